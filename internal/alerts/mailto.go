// Package alerts composes the emails students send hosts. Nothing is sent
// from the server; the client opens the resulting mailto link.
package alerts

import (
	"errors"
	"net/url"
	"sort"
	"strings"

	"github.com/sudo-init-do/campusgigs/internal/models"
)

const inquirySubject = "Interest in Your Service"

// ErrNoRecipients means none of the cart items has a reachable host.
var ErrNoRecipients = errors.New("alerts: no hosts to contact")

// Envelope is a pre-filled message.
type Envelope struct {
	To      []string `json:"to"`
	Bcc     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	Mailto  string   `json:"mailto"`
}

// HostInquiry addresses every distinct host in items. A single host goes in
// To; several hosts are blind-copied.
func HostInquiry(items []models.CartItem) (Envelope, error) {
	seen := map[string]bool{}
	var hosts, titles []string
	for _, it := range items {
		if it.Service == nil {
			continue
		}
		titles = append(titles, it.Service.Title)
		h := strings.TrimSpace(it.Service.HostEmail)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		hosts = append(hosts, h)
	}
	if len(hosts) == 0 {
		return Envelope{}, ErrNoRecipients
	}
	sort.Strings(hosts)

	var b strings.Builder
	b.WriteString("Hello,\n\nI am interested in your service(s) listed on Fiverr for Students.\n\nService(s):\n")
	for _, t := range titles {
		b.WriteString("- " + t + "\n")
	}
	b.WriteString("\nPlease let me know more details.\n\nThank you!")

	env := Envelope{Subject: inquirySubject, Body: b.String()}
	if len(hosts) == 1 {
		env.To = hosts
	} else {
		env.To = []string{}
		env.Bcc = hosts
	}
	env.Mailto = env.MailtoURL()
	return env, nil
}

// MailtoURL renders e as a mailto: link with percent-encoded fields.
func (e Envelope) MailtoURL() string {
	params := []string{}
	if len(e.Bcc) > 0 {
		params = append(params, "bcc="+escapeAddresses(e.Bcc))
	}
	params = append(params, "subject="+escape(e.Subject), "body="+escape(e.Body))
	return "mailto:" + escapeAddresses(e.To) + "?" + strings.Join(params, "&")
}

// escapeAddresses escapes each address and joins them with literal commas.
func escapeAddresses(addrs []string) string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = strings.ReplaceAll(escape(a), "%40", "@")
	}
	return strings.Join(out, ",")
}

// escape matches encodeURIComponent: spaces become %20, not '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
