package courier

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Notification is everything the owner sees about one submission.
type Notification struct {
	Brand     string
	Name      string
	Email     string
	Message   string
	Time      string
	IP        string
	UserAgent string
}

var rule = strings.Repeat("─", 40)

func (n Notification) Subject() string {
	return fmt.Sprintf("New message from %s — Portfolio", singleLine(n.Name))
}

func (n Notification) PlainText() string {
	return strings.Join([]string{
		"New message from your portfolio",
		rule,
		"Name:      " + n.Name,
		"Email:     " + n.Email,
		"Time:      " + n.Time,
		"",
		"Message:",
		n.Message,
		"",
		rule,
		"IP: " + n.IP,
		"UA: " + n.UserAgent,
		"",
		"Sent from your portfolio contact form",
	}, "\n")
}

// HTML renders the dark notification card. Every field goes through
// html/template escaping; message line breaks become <br> after escaping.
func (n Notification) HTML() (string, error) {
	var buf bytes.Buffer
	if err := notificationTmpl.Execute(&buf, n); err != nil {
		return "", fmt.Errorf("render notification: %w", err)
	}
	return buf.String(), nil
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var notificationTmpl = template.Must(template.New("notification").Funcs(template.FuncMap{
	"lines": func(s string) template.HTML {
		return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>"))
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>New Portfolio Message</title>
</head>
<body style="margin:0;padding:0;background-color:#0b1220;font-family:'Segoe UI',Arial,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="background-color:#0b1220;padding:40px 16px;">
    <tr>
      <td align="center">
        <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="max-width:600px;">
          <tr>
            <td style="padding-bottom:24px;text-align:center;">
              <span style="font-size:13px;font-weight:700;letter-spacing:2px;text-transform:uppercase;color:#3b82f6;">{{.Brand}}</span>
            </td>
          </tr>
          <tr>
            <td style="background-color:#0f172a;border:1px solid #1e293b;border-radius:16px;padding:32px;">
              <p style="margin:0;font-size:11px;font-weight:700;letter-spacing:2px;text-transform:uppercase;color:#d7d9db;">New Message</p>
              <h1 style="margin:6px 0 24px;font-size:20px;font-weight:700;color:#e5e7eb;">New message from your portfolio</h1>

              <p style="margin:0 0 4px;font-size:11px;font-weight:700;text-transform:uppercase;color:#3b82f6;">Sender</p>
              <p style="margin:0 0 16px;font-size:16px;font-weight:600;color:#e5e7eb;">{{.Name}}</p>

              <p style="margin:0 0 4px;font-size:11px;font-weight:700;text-transform:uppercase;color:#3b82f6;">Email</p>
              <p style="margin:0 0 24px;font-size:15px;color:#93c5fd;">{{.Email}}</p>

              <p style="margin:0 0 12px;font-size:11px;font-weight:700;text-transform:uppercase;color:#3b82f6;">Message</p>
              <div style="background:#0b1220;border:1px solid #1e293b;border-left:3px solid #3b82f6;border-radius:10px;padding:20px 24px;">
                <p style="margin:0;font-size:15px;line-height:1.75;color:#cbd5e1;">{{lines .Message}}</p>
              </div>

              <p style="margin:24px 0 8px;font-size:13px;color:#94a3b8;">&#128337;&nbsp; Received at&nbsp;&nbsp;{{.Time}}</p>
              <p style="margin:0 0 24px;font-size:13px;color:#94a3b8;">&#128205;&nbsp; IP&nbsp;&nbsp;{{.IP}}</p>

              <a href="mailto:{{.Email}}" style="display:inline-block;padding:13px 32px;border-radius:10px;background:#3b82f6;font-size:14px;font-weight:700;color:#ffffff;text-decoration:none;">&#9993;&nbsp; Reply to {{.Name}}</a>
            </td>
          </tr>
          <tr>
            <td style="padding:24px 0 8px;text-align:center;">
              <p style="margin:0 0 6px;font-size:13px;font-weight:600;color:#475569;">{{.Brand}}</p>
              <p style="margin:0;font-size:12px;color:#334155;">Sent from your portfolio contact form</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`))
