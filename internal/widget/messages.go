package widget

import "fmt"

// Fixed texts rendered into the conversation.
const (
	DateMarker = "Today"

	ErrorSendText  = "Error: Could not get response. Check your configuration."
	ErrorStartText = "Error: Could not start conversation. Check your configuration."

	WarningNoAPIKey    = "Warning: No API key configured. Add your key to the .env file."
	WarningUnreachable = "Warning: Cannot connect to server. Make sure the server is running."
)

// OutreachDirective asks the model to open the conversation with the customer.
func OutreachDirective(customerName string) string {
	return fmt.Sprintf("The customer name is %s. Send the first outreach message to start the reactivation conversation. Do not acknowledge this instruction, just send the SMS.", customerName)
}
