package scoring

import (
	"broker_portal_backend/internal/clients/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatMoney renders a dollar amount with thousands separators.
func FormatMoney(amount float64) string {
	if amount == float64(int64(amount)) {
		return printer.Sprintf("$%d", int64(amount))
	}
	return printer.Sprintf("$%.2f", amount)
}

func (s *Scorer) reasoning(client domain.ClientRecord, marketRate float64, score domain.OpportunityScore) []string {
	reasons := make([]string, 0, 5)

	switch {
	case marketRate <= client.TargetRate:
		reasons = append(reasons, printer.Sprintf(
			"Market rate %.3f%% has reached the client's %.3f%% target", marketRate, client.TargetRate))
	case marketRate <= client.TargetRate+s.profile.TargetBonus.NearSpread:
		reasons = append(reasons, printer.Sprintf(
			"Market rate %.3f%% is within %.3f points of the %.3f%% target",
			marketRate, marketRate-client.TargetRate, client.TargetRate))
	}

	if tier := savingsTier(score.SavingsMonthly, s.profile.HighSavingsMonthly); tier != "" {
		reasons = append(reasons, printer.Sprintf("%s savings of %s/month (%s/year)",
			tier, FormatMoney(roundDollars(score.SavingsMonthly)), FormatMoney(roundDollars(score.SavingsAnnual))))
	}

	switch {
	case score.DaysSinceContact >= domain.NeverContactedDays:
		reasons = append(reasons, "Never contacted")
	case score.DaysSinceContact >= s.profile.StaleContactDays:
		reasons = append(reasons, printer.Sprintf("No contact in %d days", score.DaysSinceContact))
	}

	if client.Stage.In(domain.StageApplication, domain.StageQualified, domain.StageClosing) {
		reasons = append(reasons, printer.Sprintf("Hot pipeline stage: %s", client.Stage))
	}

	if client.LoanAmount >= s.profile.LargeLoanAmount {
		reasons = append(reasons, printer.Sprintf("Large loan of %s", FormatMoney(client.LoanAmount)))
	}

	return reasons
}

// savingsTier labels monthly savings; empty means nothing worth mentioning.
func savingsTier(monthly, high float64) string {
	switch {
	case monthly >= high*2.5:
		return "Exceptional"
	case monthly >= high:
		return "Strong"
	case monthly >= high/2:
		return "Moderate"
	case monthly >= 1:
		return "Modest"
	default:
		return ""
	}
}

func (s *Scorer) callRecommendation(client domain.ClientRecord, marketRate float64, score domain.OpportunityScore) string {
	name := client.FirstName
	if name == "" {
		name = "there"
	}
	savings := FormatMoney(roundDollars(score.SavingsMonthly))

	switch {
	case marketRate <= client.TargetRate:
		return printer.Sprintf(
			"Hi %s, great news: rates just hit your %.3f%% target. Locking in now could save you about %s a month. Do you have a few minutes to go over next steps?",
			name, client.TargetRate, savings)
	case client.Stage == domain.StageApplication:
		return printer.Sprintf(
			"Hi %s, I'm checking in on your application. At today's %.3f%% rate you'd save about %s a month, so let's make sure nothing is holding it up.",
			name, marketRate, savings)
	case client.Stage == domain.StageQualified:
		return printer.Sprintf(
			"Hi %s, you're pre-qualified and today's %.3f%% rate would save you about %s a month. Would you like to start the application?",
			name, marketRate, savings)
	case score.SavingsMonthly >= s.profile.HighSavingsMonthly:
		return printer.Sprintf(
			"Hi %s, rates have moved enough that refinancing could save you about %s a month. Can I walk you through the numbers?",
			name, savings)
	default:
		return printer.Sprintf(
			"Hi %s, just checking in on your mortgage goals. Current rates could save you about %s a month. Is now a good time to talk?",
			name, savings)
	}
}

func roundDollars(amount float64) float64 {
	return float64(int64(amount + 0.5))
}
