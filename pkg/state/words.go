package state

import "math/rand"

// Word lists for plan file naming, adjective-verb-noun.
var (
	planAdjectives = []string{
		"velvety", "swirling", "gleaming", "dancing", "quiet", "bright",
		"ancient", "swift", "gentle", "bold", "frozen", "golden", "hollow",
		"eager", "secret", "distant", "misty", "tender", "wild", "calm",
	}
	planVerbs = []string{
		"crunching", "gliding", "spinning", "weaving", "drifting", "singing",
		"flowing", "growing", "building", "seeking", "watching", "waiting",
		"running", "falling", "rising", "turning", "crossing", "finding",
		"making", "taking",
	}
	planNouns = []string{
		"ocean", "forest", "mountain", "river", "meadow", "valley", "island",
		"canyon", "desert", "glacier", "thunder", "shadow", "crystal", "ember",
		"garden", "harbor", "beacon", "bridge", "tunnel", "tower",
	}
)

// GeneratePlanName returns a random {adjective}-{verb}-{noun} name.
func GeneratePlanName() string {
	return planAdjectives[rand.Intn(len(planAdjectives))] + "-" +
		planVerbs[rand.Intn(len(planVerbs))] + "-" +
		planNouns[rand.Intn(len(planNouns))]
}
