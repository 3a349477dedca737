package catalog

// DefaultCatalog is the built-in protection & controls commissioning
// tree. Deployments with different equipment ship a yaml override
// instead of editing this.
func DefaultCatalog() *Catalog {
	return &Catalog{Systems: []System{
		{
			Name: "MV SWGR",
			Categories: []Category{
				{
					Name: "Overcurrent",
					Subcategories: []Subcategory{
						{Name: "Overcurrent", Activities: []string{"Pickup", "Timing", "Characteristic Curve", "Instantaneous"}},
						{Name: "Earth Fault", Activities: []string{"Pickup", "Timing", "Directionality"}},
					},
				},
				{
					Name: "Relay",
					Subcategories: []Subcategory{
						{Name: "Distance", Activities: []string{"Impedance", "Zone Timing", "Power Swing Blocking"}},
						{Name: "Differential", Activities: []string{"Slope", "Harmonic Restraint", "Stability"}},
					},
				},
				{
					Name: "Circuit Breaker",
					Subcategories: []Subcategory{
						{Name: "Timing", Activities: []string{"Open", "Close", "Trip Free"}},
						{Name: "Contact Resistance", Activities: []string{"Main Contacts", "Arcing Contacts"}},
					},
				},
			},
		},
		{
			Name: "LV SWGR",
			Categories: []Category{
				{
					Name: "ACB",
					Subcategories: []Subcategory{
						{Name: "Primary Injection", Activities: []string{"Long Time", "Short Time", "Instantaneous", "Ground Fault"}},
						{Name: "Secondary Injection", Activities: []string{"Trip Unit", "Zone Interlock"}},
					},
				},
				{
					Name: "Busbar",
					Subcategories: []Subcategory{
						{Name: "Insulation", Activities: []string{"Phase-Phase", "Phase-Earth"}},
						{Name: "Torque", Activities: []string{"Joints", "Terminations"}},
					},
				},
			},
		},
		{
			Name: "Power Transformer",
			Categories: []Category{
				{
					Name: "Electrical Tests",
					Subcategories: []Subcategory{
						{Name: "Winding Resistance", Activities: []string{"HV Winding", "LV Winding", "Tap Range"}},
						{Name: "Turns Ratio", Activities: []string{"All Taps", "Vector Group"}},
						{Name: "Insulation", Activities: []string{"Megger", "Tan Delta", "Core Insulation"}},
					},
				},
				{
					Name: "Oil",
					Subcategories: []Subcategory{
						{Name: "Oil Tests", Activities: []string{"Dielectric Strength", "Moisture", "DGA Sample"}},
					},
				},
			},
		},
		{
			Name: "SCADA",
			Categories: []Category{
				{
					Name: "Communication",
					Subcategories: []Subcategory{
						{Name: "Point-to-Point", Activities: []string{"Digital Inputs", "Digital Outputs", "Analogs"}},
						{Name: "Network", Activities: []string{"Ping Test", "Redundancy Failover"}},
					},
				},
			},
		},
	}}
}
