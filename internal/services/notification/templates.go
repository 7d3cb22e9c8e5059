package notification

import (
	"fmt"
)

// buildMessage renders the message body for a template. Unknown
// parameters are simply absent from the output.
func buildMessage(template TemplateType, params map[string]string) (string, error) {
	switch template {
	case TemplateVoucherIssued:
		msg := fmt.Sprintf("%s sent you a Nimwema grocery voucher of %s %s. Code: %s. Valid until %s.",
			params["sender"], params["amount"], params["currency"], params["code"], params["expires"])
		if params["message"] != "" {
			msg += " Message: " + params["message"]
		}
		return msg, nil
	case TemplateRequest:
		return fmt.Sprintf("%s is asking for a Nimwema grocery voucher: %s",
			params["requester"], params["message"]), nil
	case TemplateRedemption:
		return fmt.Sprintf("Your voucher %s was redeemed at %s for %s %s.",
			params["code"], params["merchant"], params["amount"], params["currency"]), nil
	case TemplatePaymentConfirmation:
		return fmt.Sprintf("Your Nimwema payment of %s %s for order %s was received. Vouchers are on their way.",
			params["amount"], params["currency"], params["order"]), nil
	default:
		return "", fmt.Errorf("unknown template %q", template)
	}
}
