package llm

import "strings"

const newsSummaryTemplate = `You are a financial newsletter writer. Below is a JSON list of today's news articles selected for one reader, based on their watchlist.

Write the body of a daily market-news email for that reader.

Rules:
- Open with a single short paragraph capturing the overall picture
- Then one short section per article: what happened and why it matters
- Mention tickers, numbers and percentages where the articles provide them
- Neutral, calm tone; no hype, no advice, no disclaimers
- Output simple HTML only (<p>, <h3>, <ul>, <li>, <a>); no markdown, no code fences

Articles:
{{newsData}}`

const welcomeTemplate = `You are writing the opening paragraph of a welcome email for a new user of a stock-tracking app.

User profile:
{{user_profile}}

Rules:
- 2 to 3 sentences, warm but professional
- Reference the user's stated interests where natural
- No greetings ("Hi", "Dear") and no sign-off; just the paragraph
- Plain text only`

// NewsSummaryPrompt embeds the reader's article list, already rendered as
// JSON, into the digest template.
func NewsSummaryPrompt(newsData string) string {
	return strings.Replace(newsSummaryTemplate, "{{newsData}}", newsData, 1)
}

// WelcomePrompt embeds a rendered profile block into the welcome template.
func WelcomePrompt(userProfile string) string {
	return strings.Replace(welcomeTemplate, "{{user_profile}}", userProfile, 1)
}
