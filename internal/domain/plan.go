package domain

// Resource identifies a metered consumable charged against plan limits.
type Resource string

const (
	ResourceMessages       Resource = "messages"
	ResourceTranslations   Resource = "translations"
	ResourceAIInteractions Resource = "aiInteractions"
	ResourceFileStorage    Resource = "fileStorageBytes"
	ResourceGroupChats     Resource = "groupChats"
)

const MiB = 1 << 20

// Plan describes the per-period allowances of a subscription tier.
type Plan struct {
	Name            string
	Limits          map[Resource]int64
	MaxGroupMembers int
}

// Limit returns the plan's allowance for a resource. Resources without an
// entry are unavailable (limit zero).
func (p Plan) Limit(r Resource) int64 {
	return p.Limits[r]
}

// FreePlan returns the default tier assigned to users without a paid plan.
func FreePlan() Plan {
	return Plan{
		Name: "free",
		Limits: map[Resource]int64{
			ResourceMessages:       100,
			ResourceTranslations:   50,
			ResourceAIInteractions: 20,
			ResourceFileStorage:    50 * MiB,
			ResourceGroupChats:     3,
		},
		MaxGroupMembers: 5,
	}
}

// PlanByName resolves a stored plan name to its limits, falling back to the
// free tier for unknown names.
func PlanByName(name string) Plan {
	switch name {
	case "pro":
		return Plan{
			Name: "pro",
			Limits: map[Resource]int64{
				ResourceMessages:       2000,
				ResourceTranslations:   1000,
				ResourceAIInteractions: 400,
				ResourceFileStorage:    2048 * MiB,
				ResourceGroupChats:     50,
			},
			MaxGroupMembers: 100,
		}
	default:
		return FreePlan()
	}
}
