package advisor

import (
	"fmt"
	"strings"
)

// System instructions for the three generation flows. The budget and
// categorization flows demand strict JSON because the result is parsed
// and persisted; the chat flow stays free text with search grounding.
const (
	BudgetSystemInstruction = "You are a professional financial engine. Your ONLY response MUST be a complete, valid JSON object strictly following the required schema. Do not include any extra text."

	ChatSystemInstruction = "You are an AI Financial Advisor for a website user. Give short (max 3 sentences), simple, safe, non-aggressive, and general financial advice responses. Keep the tone helpful and concise."
)

// BudgetPrompt asks for a 50/30/20 plan. The Hinglish phrasing is
// deliberate: the product's audience expects advice in that register.
func BudgetPrompt(income, expenses float64, goal string) string {
	return fmt.Sprintf(
		"Mera monthly income %v hai, aur monthly fixed expenses %v hain. Mera financial goal %s hai. "+
			"Is data ke aadhar par 50/30/20 rule ka upyog karte hue ek budget aur salah (advice) plan JSON format mein taiyar karein.",
		income, expenses, goal)
}

// CategorizeSystemInstruction constrains the model to a closed category set
// so rows can be persisted without free-form category sprawl.
func CategorizeSystemInstruction(categories []string) string {
	return fmt.Sprintf(
		"You are a transaction categorization engine. Your ONLY response MUST be a complete, valid JSON object which is an array of categorized transactions. "+
			"Use only these categories: %s. DO NOT include any explanatory text.",
		quoteList(categories))
}

func CategorizePrompt(csvData string) string {
	return fmt.Sprintf("Please categorize the following raw transactions data:\n\nRaw Data (CSV format):\n%s", csvData)
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "'" + item + "'"
	}
	return strings.Join(quoted, ", ")
}
