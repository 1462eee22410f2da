// Package email delivers change reports over SMTP.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/thronewatch"
	"github.com/jordan-wright/email"
)

// DefaultPort is the SMTP submission port.
const DefaultPort = 587

// Ensure Notifier implements thronewatch.Notifier at compile time.
var _ thronewatch.Notifier = (*Notifier)(nil)

// Config holds SMTP delivery settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	// UseSSL dials with implicit TLS. Otherwise STARTTLS is used when the
	// server offers it.
	UseSSL bool
}

// Enabled reports whether enough is configured to send mail.
func (c Config) Enabled() bool {
	return c.Host != "" && c.From != "" && len(c.To) > 0
}

// Validate returns an error if the config cannot be used to send mail.
func (c Config) Validate() error {
	if c.Host == "" {
		return thronewatch.Errorf(thronewatch.EINVALID, "SMTP host required")
	}
	if c.From == "" {
		return thronewatch.Errorf(thronewatch.EINVALID, "sender address required")
	}
	if len(c.To) == 0 {
		return thronewatch.Errorf(thronewatch.EINVALID, "at least one recipient required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return thronewatch.Errorf(thronewatch.EINVALID, "invalid SMTP port %d", c.Port)
	}
	return nil
}

func (c Config) addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// Notifier sends one email per change report.
type Notifier struct {
	cfg  Config
	conv *converter.Converter
}

// NewNotifier creates a Notifier for cfg.
func NewNotifier(cfg Config) *Notifier {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Notifier{cfg: cfg, conv: conv}
}

// Notify composes and sends the report. The SMTP exchange itself cannot be
// interrupted; a cancelled ctx only stops Notify from waiting for it.
func (n *Notifier) Notify(ctx context.Context, targetKey string, report *thronewatch.ChangeReport) error {
	if err := n.cfg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := n.Compose(targetKey, report)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- n.send(msg) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		return nil
	}
}

func (n *Notifier) send(msg *email.Email) error {
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if n.cfg.UseSSL {
		return msg.SendWithTLS(n.cfg.addr(), auth, &tls.Config{ServerName: n.cfg.Host})
	}

	err := msg.Send(n.cfg.addr(), auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = msg.Send(n.cfg.addr(), nil)
	}
	return err
}

// Compose builds the message for a report: an HTML body with a Markdown
// rendition of it as the plain-text part.
func (n *Notifier) Compose(targetKey string, report *thronewatch.ChangeReport) (*email.Email, error) {
	var body bytes.Buffer
	if err := reportTemplate.Execute(&body, newReportView(targetKey, report)); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	text, err := n.conv.ConvertString(body.String())
	if err != nil || strings.TrimSpace(text) == "" {
		text = thronewatch.FormatReport(targetKey, report)
	}

	msg := email.NewEmail()
	msg.From = n.cfg.From
	msg.To = n.cfg.To
	msg.Subject = thronewatch.ReportSubject(targetKey, report)
	msg.HTML = body.Bytes()
	msg.Text = []byte(text)
	return msg, nil
}

type itemView struct {
	Name  string
	URL   string
	Price string
}

type priceChangeView struct {
	Name string
	Old  string
	New  string
}

type reportView struct {
	Target       string
	Added        []itemView
	Removed      []itemView
	PriceChanges []priceChangeView
}

func newReportView(targetKey string, report *thronewatch.ChangeReport) reportView {
	view := reportView{Target: targetKey}
	if report == nil {
		return view
	}
	for _, item := range report.Added {
		view.Added = append(view.Added, itemView{
			Name:  item.Name,
			URL:   item.ProductURL,
			Price: thronewatch.FormatPrice(item.PriceCents, item.Currency),
		})
	}
	for _, item := range report.Removed {
		view.Removed = append(view.Removed, itemView{
			Name:  item.Name,
			URL:   item.ProductURL,
			Price: thronewatch.FormatPrice(item.PriceCents, item.Currency),
		})
	}
	for _, pc := range report.PriceChanges {
		view.PriceChanges = append(view.PriceChanges, priceChangeView{
			Name: pc.Name,
			Old:  thronewatch.FormatPrice(pc.OldPriceCents, pc.OldCurrency),
			New:  thronewatch.FormatPrice(pc.NewPriceCents, pc.NewCurrency),
		})
	}
	return view
}

var reportTemplate = template.Must(template.New("report").Parse(`<html><body>
<h2>Wishlist: {{.Target}}</h2>
{{- if .Added}}
<h3>Added</h3>
<ul>
{{- range .Added}}
<li><a href="{{.URL}}">{{.Name}}</a> ({{.Price}})</li>
{{- end}}
</ul>
{{- end}}
{{- if .Removed}}
<h3>Removed</h3>
<ul>
{{- range .Removed}}
<li>{{.Name}}</li>
{{- end}}
</ul>
{{- end}}
{{- if .PriceChanges}}
<h3>Price changes</h3>
<ul>
{{- range .PriceChanges}}
<li>{{.Name}}: {{.Old}} → {{.New}}</li>
{{- end}}
</ul>
{{- end}}
</body></html>
`))
