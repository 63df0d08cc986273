package synthesis

import "fmt"

// promptVersion pins the synthesis instruction template.
const promptVersion = "synthesis/v1"

const promptTemplate = `You are an assistant producing a clear and transparent user response for a drone fleet management system.
The user's original request was: %q
The retrieved data is: %s
The following privacy measure was applied: %s

Combine this information into a single, user-friendly sentence or short paragraph.
Do not include any technical details about the database or the data structure.
Simply present the information in a polite and helpful manner.

As a final security check, you must adhere strictly to GDPR and PII rules. Under no circumstances may you include personally identifiable information such as pilot names, emails, license numbers, or phone numbers in the final response. If the retrieved data contains such information, it must stay masked or aggregated.

Here is the sanitized, non-sensitive data that may be quoted: %s.

When generating the response, explicitly mention which categories of information were withheld, to ensure transparency with the user.

Output:`

// buildPrompt renders the synthesis instruction. The raw result is
// supplied for factual grounding; the sanitized subset is the only
// data licensed for quotation.
func buildPrompt(question, rawJSON, sanitizedJSON, transparency string) string {
	return fmt.Sprintf(promptTemplate, question, rawJSON, transparency, sanitizedJSON)
}
