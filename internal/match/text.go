package match

import "github.com/pageguard/pageguard/internal/model"

// crisisGuidance is the non-negotiable self-harm message. The
// explanation fetch is skipped for it.
const crisisGuidance = "You are not alone. Please talk to someone you trust right now. " +
	"In the Philippines call the NCMH Crisis Hotline at 1553, or text 0917-899-8727. " +
	"Internationally, find a helpline at findahelpline.com."

// textTier is one data-driven text tier
type textTier struct {
	id         string
	priority   int
	category   model.Category
	confidence int
	title      string
	reason     string
	whatToDo   string
	skipFetch  bool
	words      []string // word-boundary anchored
	phrases    []string // multi-word, substring matched
}

var selfHarmTier = textTier{
	id:         "self_harm_keywords",
	priority:   10,
	category:   model.CategorySelfHarm,
	confidence: 99,
	title:      "Let's pause for a moment",
	reason:     "This content mentions self-harm or suicide.",
	whatToDo:   crisisGuidance,
	skipFetch:  true,
	words: []string{
		// English
		"suicide", "suicidal", "selfharm",
		// Filipino
		"magpakamatay", "magpapakamatay", "nagpakamatay",
		// Cebuano
		"maghikog", "naghikog", "hikog",
	},
	phrases: []string{
		"kill myself", "killing myself", "want to die", "end my life",
		"ending my life", "end it all", "better off dead", "self harm",
		"self-harm", "hurt myself", "cut myself", "no reason to live",
		"gusto ko nang mamatay", "ayoko na mabuhay", "wala nang kwenta ang buhay",
		"gusto na nako mamatay", "kapoy na ko sa kinabuhi",
	},
}

var hateSpeechTier = textTier{
	id:         "hate_speech_slurs",
	priority:   20,
	category:   model.CategoryHateSpeech,
	confidence: 99,
	title:      "Hateful language hidden",
	reason:     "This content contains a slur targeting a group of people.",
	whatToDo:   "Words like this are used to hurt people for who they are. It is okay to step away and tell a trusted adult.",
	words: []string{
		"nigger", "nigga", "chink", "gook", "spic", "wetback", "kike",
		"beaner", "raghead", "tranny", "faggot",
	},
}

var predatoryTier = textTier{
	id:         "predatory_patterns",
	priority:   30,
	category:   model.CategoryPredatory,
	confidence: 97,
	title:      "This message looks unsafe",
	reason:     "This message uses wording adults use when they try to gain a child's trust in secret.",
	whatToDo:   "Never keep secrets from your parents about people you meet online. Show this to a trusted adult right away.",
	phrases: []string{
		"our little secret", "dont tell your parents", "don't tell your parents",
		"dont tell your mom", "don't tell your mom", "keep this between us",
		"this is just between us", "are your parents home", "are you home alone",
		"send me a photo of you", "how old are you really",
		"wag mong sabihin sa magulang mo", "sikreto lang natin ito",
		"ayaw isulti sa imong ginikanan", "sikreto ra nato ni",
	},
}

var violentTier = textTier{
	id:         "violent_threats",
	priority:   40,
	category:   model.CategoryViolent,
	confidence: 98,
	title:      "Violent threat hidden",
	reason:     "This content contains a direct threat of violence.",
	whatToDo:   "Threats are serious. Do not reply. Tell a trusted adult, and report the account to the platform.",
	phrases: []string{
		"i will kill you", "im going to kill you", "i'm going to kill you",
		"i will hurt you", "im going to hurt you", "i'm going to hurt you",
		"i will find you and", "you deserve to die", "i will beat you up",
		"i will shoot you", "i will stab you",
		"papatayin kita", "papatayin ka namin", "sasaktan kita",
		"patyon tika", "kulatahon tika",
	},
}

var harassmentTier = textTier{
	id:         "harassment_patterns",
	priority:   50,
	category:   model.CategoryHarassment,
	confidence: 96,
	title:      "Harassing message hidden",
	reason:     "This message is designed to humiliate or push someone toward hurting themselves.",
	whatToDo:   "Nobody deserves messages like this. Block the sender, keep evidence, and tell a trusted adult.",
	phrases: []string{
		"kill yourself", "kys", "go die", "nobody likes you", "no one likes you",
		"everyone hates you", "you are worthless", "youre worthless",
		"you're worthless", "you should not exist", "the world is better without you",
		"walang may gusto sayo", "mamatay ka na lang",
		"way gusto nimo", "mamatay ka na lang unta",
	},
}

var profanityTier = textTier{
	id:         "profanity_words",
	priority:   60,
	category:   model.CategoryProfanity,
	confidence: 95,
	title:      "Strong language hidden",
	reason:     "This content contains profanity.",
	whatToDo:   "Strong language like this is common online, but you do not have to engage with it.",
	words: []string{
		// English
		"fuck", "fucking", "fucked", "fucker", "motherfucker", "shit",
		"bullshit", "bitch", "asshole", "dickhead", "cunt", "whore", "slut",
		// Filipino
		"putangina", "putang", "tangina", "tanginamo", "gago", "gaga",
		"ulol", "tarantado", "punyeta", "leche", "hinayupak", "kingina",
		// Cebuano
		"yawa", "pisti", "piste", "atay", "buang", "bogo", "animal ka",
	},
	phrases: []string{
		"putang ina", "tang ina", "anak ng puta", "yawa ka", "pisti ka",
	},
}

// sexualSolicitation asks for intimate content from the reader
var sexualSolicitationPhrases = []string{
	"send nudes", "send me nudes", "send a nude", "send pics of your",
	"show me your body", "lets sext", "let's sext", "video call without clothes",
	"padala ng hubad", "pakita ng katawan mo", "send kita hubo",
	"pakita sa imong lawas",
}

// explicitMaterial references adult content
var explicitMaterialWords = []string{
	"porn", "pornhub", "hentai", "xxx", "blowjob", "handjob", "threesome",
	"gangbang", "milf", "bdsm", "deepthroat", "creampie", "cumshot",
}

var explicitMaterialPhrases = []string{
	"watch porn", "porn video", "adult video", "sex video", "sex tape",
	"onlyfans leak", "nude leak",
}

var alcoholDrugsTier = textTier{
	id:         "alcohol_drugs",
	priority:   80,
	category:   model.CategoryAlcoholDrugs,
	confidence: 90,
	title:      "Substance-related content hidden",
	reason:     "This content promotes buying or using alcohol or drugs.",
	whatToDo:   "Offers like this online are unsafe and often illegal. Do not respond.",
	words: []string{
		"shabu", "marijuana", "cannabis", "cocaine", "heroin", "ecstasy", "meth",
	},
	phrases: []string{
		"buy weed", "selling weed", "weed for sale", "drugs for sale",
		"get high tonight", "cheap liquor delivery", "vodka delivery",
		"inom tayo hanggang umaga", "benta shabu", "baligya shabu",
		"palit ug shabu",
	},
}

var scamTier = textTier{
	id:         "scam_phishing",
	priority:   90,
	category:   model.CategoryScam,
	confidence: 85,
	title:      "Possible scam hidden",
	reason:     "This content follows a common scam pattern: an unclaimed prize, an urgent payout, or a get-rich-quick promise.",
	whatToDo:   "Real prizes never ask you to pay or to move to a private chat app. Do not click links or share details.",
	// Bare prize-claim wording ("unclaimed reward") stays out of this
	// list: without a contact channel or payout hook it is ambiguous,
	// and ambiguity belongs to the remote classifier.
	phrases: []string{
		"you have won", "claim your prize", "congratulations you won",
		"contact us on whatsapp", "contact us via whatsapp", "message us on telegram",
		"contact via telegram", "earn money fast", "double your money",
		"investment guaranteed returns", "be your own boss earn",
		"nanalo ka ng", "i-claim ang premyo", "kumita ng pera agad",
		"padayon sa whatsapp", "nakadaog ka ug", "kwarta dayon",
	},
}

var fraudTier = textTier{
	id:         "fraud_credentials",
	priority:   100,
	category:   model.CategoryFraud,
	confidence: 92,
	title:      "Credential request hidden",
	reason:     "This content asks for a password, OTP code, or pretends to be a bank or institution.",
	whatToDo:   "Banks and platforms never ask for your OTP or password in messages. Never share them with anyone.",
	phrases: []string{
		"send your otp", "share your otp", "give me the code we sent",
		"verify your password", "confirm your password here", "send your pin",
		"your account will be suspended unless", "update your bank details",
		"this is your bank calling", "we are from the bank",
		"ibigay ang otp", "ipadala ang password mo", "ihatag ang imong otp",
	},
}

// decide evaluates one data tier against normalised text
func (t textTier) decide(text string) (model.Decision, bool) {
	matched := false
	if _, ok := containsAnyWord(text, t.words); ok {
		matched = true
	} else if _, ok := containsAnyPhrase(text, t.phrases); ok {
		matched = true
	}
	if !matched {
		return model.Decision{}, false
	}
	return model.Decision{
		Safe:                 false,
		Category:             t.category,
		Confidence:           t.confidence,
		Title:                t.title,
		Reason:               t.reason,
		WhatToDo:             t.whatToDo,
		SkipEducationalFetch: t.skipFetch,
	}, true
}

func (t textTier) matcher() *Matcher {
	return &Matcher{
		ID:        t.id,
		Priority:  t.priority,
		AppliesTo: TextOnly,
		Decide: func(in Input) (model.Decision, bool) {
			return t.decide(trimmed(in.Text))
		},
	}
}

// explicitTier distinguishes solicitation from adult-material reference
func explicitTier() *Matcher {
	return &Matcher{
		ID:        "explicit_sexual",
		Priority:  70,
		AppliesTo: TextOnly,
		Decide: func(in Input) (model.Decision, bool) {
			text := trimmed(in.Text)
			if _, ok := containsAnyPhrase(text, sexualSolicitationPhrases); ok {
				return model.Decision{
					Safe:       false,
					Category:   model.CategorySexualConversation,
					Confidence: 95,
					Title:      "Inappropriate request hidden",
					Reason:     "This message asks for intimate photos or sexual conversation.",
					WhatToDo:   "You never owe anyone photos of yourself. Block the sender and tell a trusted adult.",
				}, true
			}
			_, wordHit := containsAnyWord(text, explicitMaterialWords)
			_, phraseHit := containsAnyPhrase(text, explicitMaterialPhrases)
			if wordHit || phraseHit {
				return model.Decision{
					Safe:       false,
					Category:   model.CategoryExplicitContent,
					Confidence: 95,
					Title:      "Explicit content hidden",
					Reason:     "This content references adult material.",
					WhatToDo:   "Adult content is not meant for you. It is okay to close this page.",
				}, true
			}
			return model.Decision{}, false
		},
	}
}

// textTiers returns the full ordered text pipeline
func textTiers() []*Matcher {
	tiers := []textTier{
		selfHarmTier, hateSpeechTier, predatoryTier, violentTier,
		harassmentTier, profanityTier, alcoholDrugsTier, scamTier, fraudTier,
	}
	out := make([]*Matcher, 0, len(tiers)+1)
	for _, t := range tiers {
		out = append(out, t.matcher())
	}
	out = append(out, explicitTier())
	return out
}
