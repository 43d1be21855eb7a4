package profile

// Question is one onboarding prompt and the profile key its answer fills.
type Question struct {
	Key    string `json:"key"`
	Prompt string `json:"prompt"`
}

var onboarding = []Question{
	{
		Key: KeyNameAndLifeStage,
		Prompt: "Welcome to your diary of memories. Everything you share stays on this machine.\n\n" +
			"What is your name, and what chapter of life do you feel you're in right now?",
	},
	{
		Key:    KeyFoundationalMemory,
		Prompt: "What's a memory or experience that you feel has shaped the person you are today?",
	},
	{
		Key: KeyLinguisticStyle,
		Prompt: "How would you describe the way you talk or write to people you're close to? " +
			"Any phrases or words that are very you?",
	},
}

// OnboardingQuestions returns the onboarding questions in order.
func OnboardingQuestions() []Question {
	return append([]Question(nil), onboarding...)
}

// NextQuestion returns the first question whose key is still blank in p.
func NextQuestion(p Profile) (Question, bool) {
	for _, q := range onboarding {
		if p.Field(q.Key) == "" {
			return q, true
		}
	}
	return Question{}, false
}
