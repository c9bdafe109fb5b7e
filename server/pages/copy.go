package pages

// Copy holds all of the prose on the site that isn't a caption
type Copy struct {
	RecipientName  string
	Dedication     string
	HeroTitle      string
	HeroSubtitle   string
	InvitationText string
	TimelineIntro  string
	BlogIntro      string
}

var SiteCopy = Copy{
	RecipientName:  "Emma",
	Dedication:     "Dear Emma, every nap, biscuit, zoomie, and cuddle has been my favorite chapter with you.",
	HeroTitle:      "Champa's Valentine Scrapbook",
	HeroSubtitle:   "A purring timeline of my best memories, written by me (the fluffy boss) for the human I adore most.",
	InvitationText: "You are invited to the coziest private memory album. Enter the secret phrase and open my letters to you!",
	TimelineIntro:  "Every date is one more tiny love letter from me to you. Scroll slowly and collect all the whisker moments.",
	BlogIntro:      "Welcome to my diary. I have carefully documented my cutest opinions and professional cuddle reports.",
}

var blogTitles = []string{
	"How I Managed Today's Cuddle Schedule",
	"Professional Nap Notes and Cozy Findings",
	"A Report on Zoomies, Treats, and Love",
	"Whisker Dispatch From My Favorite Spot",
	"An Important Statement About Being Adored",
}

func blogTitle(i int) string {
	return blogTitles[i%len(blogTitles)]
}
