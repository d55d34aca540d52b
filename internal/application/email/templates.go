package email

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/expertresume/notification-api/internal/domain"
)

// Content is a rendered template: subject plus the html and plain-text body
// variants that go into the multipart message.
type Content struct {
	Subject string
	HTML    string
	Text    string
}

// Data is the merged template data bag: profile fields overlaid with
// call-site data (call-site wins).
type Data map[string]interface{}

type template struct {
	subject func(d Data) string
	html    func(d Data) string
	text    func(d Data) string
}

// Render maps a template id and data bag to content. Unknown ids are a
// configuration defect, not a client error.
func Render(templateID string, d Data) (*Content, error) {
	t, ok := registry[templateID]
	if !ok {
		return nil, fmt.Errorf("template %q not registered: %w", templateID, domain.ErrTemplateNotFound)
	}
	return &Content{
		Subject: t.subject(d),
		HTML:    t.html(d),
		Text:    t.text(d),
	}, nil
}

// TemplateIDs returns all registered template ids, for the capability
// description endpoint.
func TemplateIDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}

const (
	brandTeal     = "#0d9488"
	brandTealDark = "#0f766e"
	brandTealBg   = "#f0fdfa"
	brandGray     = "#6b7280"
	brandDark     = "#111827"

	// The transparent logo renders badly on white print backgrounds, so PDF
	// output uses the solid variant.
	logoWeb   = "https://expertresume.us/ExpertResume.png"
	logoSolid = "https://expertresume.us/ExpertResume-solid.png"
)

var registry = map[string]template{
	"verification": {
		subject: func(d Data) string { return "Verify your email for ExpertResume" },
		html: func(d Data) string {
			return wrapHTML(d, "Verify your email", fmt.Sprintf(`
        <p style="color: %[1]s; font-size: 16px;">Hi %[2]s,</p>
        <p style="color: %[1]s; font-size: 16px;">Your ExpertResume verification code is:</p>
        <div style="font-size: 36px; font-weight: bold; color: %[3]s; letter-spacing: 8px; margin: 28px 0; background: %[4]s; padding: 20px; border-radius: 12px;">%[5]s</div>
        <p style="color: %[1]s; font-size: 16px;">Enter this code on the website to complete your verification. It expires in 10 minutes.</p>
        <p style="color: %[1]s; font-size: 14px;">If you did not request this, you can safely ignore this email.</p>`,
				brandGray, firstName(d), brandTealDark, brandTealBg, str(d, "code", "")))
		},
		text: func(d Data) string {
			return fmt.Sprintf("Verify your email for ExpertResume\n\nHi %s,\n\nYour ExpertResume verification code is: %s\n\nEnter this code on the website to complete your verification. It expires in 10 minutes.\n\nIf you did not request this, you can ignore this email.\n\nThe ExpertResume Team\nhttps://expertresume.us\n",
				firstName(d), str(d, "code", ""))
		},
	},

	"welcome": {
		subject: func(d Data) string { return fmt.Sprintf("Welcome to ExpertResume, %s!", firstName(d)) },
		html: func(d Data) string {
			return wrapHTML(d, "Welcome, "+firstName(d)+"!", fmt.Sprintf(`
        <p style="color: %[1]s; font-size: 16px;">Hi %[2]s,</p>
        <p style="color: %[1]s; font-size: 16px;">Thank you for joining ExpertResume! We're here to help you create a standout resume and prepare for interviews with our AI-powered tools.</p>
        <div style="background: %[3]s; padding: 24px; border-radius: 12px; margin: 24px 0; border-left: 4px solid %[4]s;">
          <h3 style="color: %[5]s; margin: 0 0 12px 0; font-size: 18px;">Your Premium Features Include:</h3>
          <p style="color: %[1]s; margin: 4px 0; font-size: 14px;">1-Minute AI Resume Upload &middot; AI Boost &middot; JD-Based Resume Builder &middot; Detailed ATS Checker &middot; Salary Analyzer</p>
        </div>
        <p style="color: %[1]s; font-size: 16px;">Log in any time to pick up where you left off.</p>`,
				brandGray, firstName(d), brandTealBg, brandTeal, brandDark))
		},
		text: func(d Data) string {
			return fmt.Sprintf("Welcome to ExpertResume, %s!\n\nThank you for joining ExpertResume! We're here to help you create a standout resume and prepare for interviews with our AI-powered tools.\n\nThe ExpertResume Team\nhttps://expertresume.us\n", firstName(d))
		},
	},

	"invoice": {
		subject: func(d Data) string {
			return fmt.Sprintf("Payment Receipt for your ExpertResume %s", str(d, "planName", "Premium Plan"))
		},
		html: func(d Data) string {
			logo := logoWeb
			if b, _ := d["isForPDF"].(bool); b {
				logo = logoSolid
			}
			currency := str(d, "currency", "USD")
			return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Payment Receipt</title></head>
<body style="margin: 0; padding: 0; font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #f3f4f6;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="max-width: 600px; margin: 20px auto; background-color: #ffffff; border-radius: 12px; overflow: hidden;">
    <tr>
      <td style="padding: 40px 40px 30px; border-bottom: 2px solid #f3f4f6;">
        <table width="100%%"><tr>
          <td valign="top">
            <img src="%[1]s" alt="ExpertResume" width="140" style="display: block;">
            <p style="margin: 10px 0 0; color: %[2]s; font-size: 14px;">Vendax Systems LLC</p>
            <p style="margin: 2px 0 0; color: %[2]s; font-size: 14px;">28 Geary St STE 650 Suite #500, San Francisco, CA 94108, USA</p>
          </td>
          <td valign="top" style="text-align: right;">
            <h1 style="margin: 0; color: %[3]s; font-size: 24px;">INVOICE</h1>
            <p style="margin: 5px 0 0; color: %[2]s; font-size: 14px;">#%[4]s</p>
            <p style="margin: 2px 0 0; color: %[2]s; font-size: 14px;">%[5]s</p>
          </td>
        </tr></table>
      </td>
    </tr>
    <tr>
      <td style="padding: 30px 40px;">
        <p style="margin: 0; color: %[2]s; font-size: 12px; text-transform: uppercase;">Billed To</p>
        <h3 style="margin: 8px 0 0; color: %[3]s; font-size: 18px;">%[6]s</h3>
        <p style="margin: 4px 0 0; color: %[2]s; font-size: 14px;">%[7]s</p>
      </td>
    </tr>
    <tr>
      <td style="padding: 0 40px 20px;">
        <table width="100%%" cellpadding="0" cellspacing="0" style="border-collapse: collapse;">
          <tr style="background-color: %[8]s;">
            <th style="padding: 12px 16px; text-align: left; color: %[9]s; font-size: 12px; text-transform: uppercase;">Description</th>
            <th style="padding: 12px 16px; text-align: right; color: %[9]s; font-size: 12px; text-transform: uppercase;">Amount</th>
          </tr>
          <tr>
            <td style="padding: 16px; color: %[3]s; font-size: 14px; border-bottom: 1px solid #f3f4f6;">%[10]s<div style="color: %[2]s; font-size: 12px; margin-top: 4px;">Subscription Period: %[11]s</div></td>
            <td style="padding: 16px; text-align: right; color: %[3]s; font-size: 14px; border-bottom: 1px solid #f3f4f6;">%[12]s</td>
          </tr>
          <tr>
            <td style="padding: 12px 16px; color: %[3]s; font-size: 16px; font-weight: bold;">Total Paid</td>
            <td style="padding: 12px 16px; text-align: right; color: %[13]s; font-size: 18px; font-weight: bold;">%[12]s</td>
          </tr>
        </table>
        <div style="margin-top: 30px; text-align: center;">
          <div style="display: inline-block; border: 2px solid #059669; color: #059669; font-weight: bold; padding: 8px 30px; font-size: 18px; letter-spacing: 2px; border-radius: 4px;">PAID</div>
        </div>
        <p style="margin: 30px 0 0; color: #9ca3af; font-size: 12px; text-align: center;">If you have any questions about this invoice, please contact <a href="mailto:support@expertresume.us" style="color: %[13]s; text-decoration: none;">support@expertresume.us</a></p>
      </td>
    </tr>
    %[14]s
  </table>
</body>
</html>`,
				logo, brandGray, brandDark, invoiceNumber(), invoiceDate(),
				firstName(d), str(d, "email", ""), brandTealBg, brandTealDark,
				str(d, "planName", "ExpertResume Premium Plan"), str(d, "billingCycle", "Monthly"),
				formatPrice(d, currency), brandTeal, footerHTML(d))
		},
		text: func(d Data) string {
			return fmt.Sprintf("PAYMENT RECEIPT\n\nInvoice Number: %s\nDate: %s\n\nBilled To:\n%s\n%s\n\nDescription:\n%s\nSubscription Period: %s\n\nTotal Paid: %s\n\nThank you for your business!\n\nVendax Systems LLC\n28 Geary St STE 650 Suite #500, San Francisco, CA 94108, USA\nsupport@expertresume.us\n",
				invoiceNumber(), invoiceDate(), firstName(d), str(d, "email", ""),
				str(d, "planName", "ExpertResume Premium Plan"), str(d, "billingCycle", "Monthly"),
				formatPrice(d, str(d, "currency", "USD")))
		},
	},

	"payment_complete": {
		subject: func(d Data) string {
			return fmt.Sprintf("Your ExpertResume %s is active", str(d, "planName", "plan"))
		},
		html: func(d Data) string {
			return wrapHTML(d, "Payment received", fmt.Sprintf(`
        <p style="color: %[1]s; font-size: 16px;">Hi %[2]s,</p>
        <p style="color: %[1]s; font-size: 16px;">Your payment went through and your <strong>%[3]s</strong> is now active. A receipt with your invoice follows in a separate email.</p>
        <p style="color: %[1]s; font-size: 16px;">Head back to the builder to make the most of your premium features.</p>`,
				brandGray, firstName(d), str(d, "planName", "plan")))
		},
		text: func(d Data) string {
			return fmt.Sprintf("Payment received\n\nHi %s,\n\nYour payment went through and your %s is now active. A receipt with your invoice follows in a separate email.\n\nThe ExpertResume Team\n",
				firstName(d), str(d, "planName", "plan"))
		},
	},

	"reset_password": {
		subject: func(d Data) string { return "Reset Your Password" },
		html: func(d Data) string {
			return wrapHTML(d, "Reset your password", fmt.Sprintf(`
        <p style="color: %[1]s; font-size: 16px;">Hi %[2]s,</p>
        <p style="color: %[1]s; font-size: 16px;">We received a request to reset the password for your ExpertResume account.</p>
        <p style="margin: 28px 0;"><a href="%[3]s" style="background: %[4]s; color: #ffffff; padding: 14px 28px; border-radius: 8px; text-decoration: none; font-weight: 600;">Reset Password</a></p>
        <p style="color: %[1]s; font-size: 14px;">If you didn't request this, please ignore this email.</p>`,
				brandGray, firstName(d), str(d, "resetLink", ""), brandTeal))
		},
		text: func(d Data) string {
			return fmt.Sprintf("Reset Your Password\n\nHi %s,\n\nWe received a request to reset the password for your ExpertResume account.\n\nClick the link below to reset your password:\n%s\n\nIf you didn't request this, please ignore this email.\n\nThe ExpertResume Team\n",
				firstName(d), str(d, "resetLink", ""))
		},
	},
}

// wrapHTML is the shared outer document: branded header, body cell, footer.
func wrapHTML(d Data, heading, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>%[1]s</title></head>
<body style="margin: 0; padding: 0; font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #f3f4f6;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="max-width: 600px; margin: 20px auto; background-color: #ffffff; border-radius: 12px; overflow: hidden;">
    <tr>
      <td style="background: linear-gradient(135deg, %[2]s 0%%, #14b8a6 100%%); padding: 40px 30px; text-align: center;">
        <a href="https://expertresume.us" style="text-decoration: none;"><img src="%[3]s" alt="ExpertResume Logo" width="160" style="display: block; margin: 0 auto;"></a>
        <h1 style="color: #ffffff; font-size: 26px; margin-top: 18px; font-weight: 800;">%[1]s</h1>
      </td>
    </tr>
    <tr><td style="padding: 32px 28px;">%[4]s</td></tr>
    %[5]s
  </table>
</body>
</html>`, heading, brandTealDark, logoWeb, body, footerHTML(d))
}

func footerHTML(d Data) string {
	return fmt.Sprintf(`<tr>
      <td style="background-color: %[1]s; padding: 30px 24px; text-align: center; border-top: 1px solid #99f6e4;">
        <p style="color: %[2]s; font-size: 14px; margin: 0 0 10px;"><strong>ExpertResume</strong><br><span style="font-size: 12px; color: %[3]s;">Powered by Vendax Systems LLC</span></p>
        <p style="color: #9ca3af; font-size: 12px; margin: 15px 0 0;">You received this email because you signed up for ExpertResume.<br><a href="https://expertresume.us/unsubscribe?email=%[4]s" style="color: %[3]s; text-decoration: underline;">Unsubscribe</a></p>
        <p style="color: #d1d5db; font-size: 11px; margin: 20px 0 0;">&copy; %[5]d Vendax Systems LLC. All rights reserved.</p>
      </td>
    </tr>`, brandTealBg, brandTealDark, brandGray, url.QueryEscape(str(d, "email", "")), time.Now().Year())
}

func firstName(d Data) string {
	return str(d, "firstName", "Friend")
}

func str(d Data, key, fallback string) string {
	if v, ok := d[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// formatPrice renders the paid amount (minor units) with a currency symbol.
func formatPrice(d Data, currency string) string {
	var cents int64
	switch v := d["finalAmount"].(type) {
	case int:
		cents = int64(v)
	case int64:
		cents = v
	case float64:
		cents = int64(v)
	}
	symbol := "$"
	if currency == "INR" {
		symbol = "₹"
	}
	if currency == "USD" {
		return fmt.Sprintf("%s%.2f", symbol, float64(cents)/100)
	}
	return fmt.Sprintf("%s%d", symbol, cents/100)
}

func invoiceNumber() string {
	ms := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "INV-" + ms
}

func invoiceDate() string {
	return time.Now().Format("January 2, 2006")
}

// AttachmentFilename derives the invoice attachment name from the plan name
// with whitespace collapsed to underscores.
func AttachmentFilename(planName string) string {
	if planName == "" {
		planName = "ExpertResume_Pro"
	}
	return "Invoice_" + strings.Join(strings.Fields(planName), "_") + ".pdf"
}
