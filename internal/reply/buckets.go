package reply

// Topic names a canned reply bucket.
type Topic string

const (
	TopicCrisis        Topic = "crisis"
	TopicPeriodPain    Topic = "period_pain"
	TopicHeadache      Topic = "headache"
	TopicAnxiety       Topic = "anxiety"
	TopicStress        Topic = "stress"
	TopicSleep         Topic = "sleep"
	TopicLoneliness    Topic = "loneliness"
	TopicSadness       Topic = "sadness"
	TopicAnger         Topic = "anger"
	TopicRelationships Topic = "relationships"
	TopicGratitude     Topic = "gratitude"
	TopicGreeting      Topic = "greeting"
	TopicFallback      Topic = "fallback"
)

// DefaultFallback answers messages that match no bucket.
const DefaultFallback = "Thank you for sharing that with me. I'm here to listen. " +
	"Would you like to tell me a little more about how you're feeling right now?"

var (
	menstrualTerms = []string{
		"period", "periods", "menstrual", "menstruation", "cramps", "cramping",
		"pms", "dysmenorrhea", "time of the month",
	}
	headacheTerms = []string{
		"headache", "headaches", "migraine", "migraines", "head hurts", "head is pounding",
	}
)

// DefaultBuckets returns the built-in buckets in evaluation order.
// Crisis is first among content buckets, and greetings come last so a
// greeting word never pre-empts a real topic in the same message.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{
			Topic: TopicCrisis,
			Terms: []string{
				"suicide", "suicidal", "kill myself", "end my life", "want to die",
				"self-harm", "self harm", "harm myself", "hurt myself", "overdose", "cutting",
			},
			Template: "I'm really sorry you're carrying this much pain, and I'm glad you told me. " +
				"Your safety matters most right now. Please call your local emergency services " +
				"or a crisis line immediately, and if you can, reach out to someone you trust " +
				"and let them stay with you. You don't have to go through this alone.",
		},
		{
			// Menstrual terms win even when a headache or migraine is also mentioned.
			Topic: TopicPeriodPain,
			Terms: menstrualTerms,
			Template: "Period pain can be really draining, and headaches or migraines often come " +
				"along with it. A warm compress on your lower abdomen, gentle stretching, rest, " +
				"and staying hydrated can help. If the pain is severe or unusual for you, " +
				"please check in with a doctor.",
		},
		{
			Topic:   TopicHeadache,
			Terms:   headacheTerms,
			Exclude: menstrualTerms,
			Template: "I'm sorry your head is hurting. Try resting in a quiet, dim room, drinking " +
				"some water, and taking a break from screens for a while. If headaches keep " +
				"coming back or feel much worse than usual, it's worth talking to a doctor.",
		},
		{
			Topic: TopicAnxiety,
			Terms: []string{
				"anxious", "anxiety", "panic", "panicking", "panic attack", "nervous",
				"worried", "worrying", "on edge",
			},
			Template: "That sounds really unsettling. Let's slow things down together: breathe in " +
				"for four counts, hold for four, and breathe out for six. Try naming five things " +
				"you can see around you. The feeling will ease, even if it doesn't feel that way yet.",
		},
		{
			Topic: TopicStress,
			Terms: []string{
				"stress", "stressed", "stressful", "overwhelmed", "pressure", "burnout",
				"burned out", "burnt out", "deadline", "deadlines", "exam", "exams",
			},
			Template: "It sounds like a lot is piling up on you. Could you pick just one small thing " +
				"to focus on next and set the rest aside for a moment? Short breaks and a few " +
				"deep breaths can make the load feel lighter.",
		},
		{
			Topic: TopicSleep,
			Terms: []string{
				"insomnia", "can't sleep", "cannot sleep", "sleepless", "trouble sleeping",
				"nightmares", "exhausted", "tired",
			},
			Template: "Not getting enough rest makes everything feel heavier. A calm wind-down " +
				"routine can help: dim the lights, put your phone away, and try some slow " +
				"breathing. Even resting with your eyes closed gives your body a break.",
		},
		{
			Topic: TopicLoneliness,
			Terms: []string{
				"lonely", "loneliness", "alone", "isolated", "no friends", "nobody cares",
				"no one cares",
			},
			Template: "Feeling alone is really hard, and I'm glad you reached out. Is there " +
				"someone, even one person, you could send a quick message to today? I'm here " +
				"to keep talking with you too.",
		},
		{
			Topic: TopicSadness,
			Terms: []string{
				"sad", "unhappy", "depressed", "depression", "feeling down", "crying", "cry",
				"miserable", "hopeless", "grief", "grieving",
			},
			Template: "I'm sorry you're feeling this way. Your feelings are valid, and it's okay " +
				"to not be okay. Would it help to talk about what's been weighing on you?",
		},
		{
			Topic: TopicAnger,
			Terms: []string{
				"angry", "furious", "frustrated", "frustrating", "irritated", "rage", "pissed",
			},
			Template: "It makes sense to feel frustrated when things aren't going right. Stepping " +
				"away for a few minutes, moving your body, or writing down what's bothering you " +
				"can help let some of that energy out.",
		},
		{
			Topic: TopicRelationships,
			Terms: []string{
				"breakup", "break up", "broke up", "divorce", "relationship", "boyfriend",
				"girlfriend", "partner", "husband", "wife", "parents", "family",
			},
			Template: "Relationships can bring up some of our strongest feelings. I'm here to " +
				"listen. What part of this has been the hardest for you?",
		},
		{
			Topic: TopicGratitude,
			Terms: []string{"thank you", "thanks", "thank", "grateful", "appreciate"},
			Template: "You're very welcome. I'm glad I could be here for you. Remember to be " +
				"gentle with yourself, and come back any time you want to talk.",
		},
		{
			Topic:      TopicGreeting,
			Terms:      []string{"hi", "hello", "hey"},
			Template:   "Hello! I'm CalmMate, and I'm here to listen. How are you feeling today?",
			Standalone: true,
		},
	}
}
