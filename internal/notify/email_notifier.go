// Package notify emails multisig owners about proposals awaiting them.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/cyphera/cyphera-wallet-policy/internal/helpers"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/multisig"
	"github.com/ethereum/go-ethereum/common"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// EmailSender is the part of the Resend client the notifier uses.
type EmailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailNotifier implements multisig.Notifier over Resend.
type EmailNotifier struct {
	emails    EmailSender
	fromEmail string
	fromName  string
	appURL    string
	logger    *zap.Logger
}

// NewEmailNotifier creates a notifier backed by a Resend client.
func NewEmailNotifier(apiKey, fromEmail, fromName, appURL string) *EmailNotifier {
	client := resend.NewClient(apiKey)
	return NewEmailNotifierWithSender(client.Emails, fromEmail, fromName, appURL)
}

// NewEmailNotifierWithSender creates a notifier that sends through emails.
func NewEmailNotifierWithSender(emails EmailSender, fromEmail, fromName, appURL string) *EmailNotifier {
	return &EmailNotifier{
		emails:    emails,
		fromEmail: fromEmail,
		fromName:  fromName,
		appURL:    strings.TrimSuffix(appURL, "/"),
		logger:    logger.ForComponent(logger.ComponentMultisig),
	}
}

var _ multisig.Notifier = (*EmailNotifier)(nil)

// proposalEmailData feeds the email templates.
type proposalEmailData struct {
	ProposalID  string
	Title       string
	Description string
	Action      string
	Account     string
	Proposer    string
	Value       string
	Deadline    string
	Approvals   int
	Required    int
	Link        string
}

// ProposalCreated asks every other active owner with an email address to
// review and sign.
func (n *EmailNotifier) ProposalCreated(ctx context.Context, cfg *multisig.Config, p *multisig.Proposal) error {
	to := recipients(cfg, func(o multisig.Owner) bool { return o.Address != p.ProposerAddress })
	if len(to) == 0 {
		return nil
	}
	return n.send(ctx, "proposal_created", to, "New proposal: "+p.Title, proposalCreatedHTML, n.data(cfg, p))
}

// ProposalReady tells every active owner that the proposal has enough
// signatures to execute.
func (n *EmailNotifier) ProposalReady(ctx context.Context, cfg *multisig.Config, p *multisig.Proposal) error {
	to := recipients(cfg, func(multisig.Owner) bool { return true })
	if len(to) == 0 {
		return nil
	}
	return n.send(ctx, "proposal_ready", to, "Ready to execute: "+p.Title, proposalReadyHTML, n.data(cfg, p))
}

func (n *EmailNotifier) data(cfg *multisig.Config, p *multisig.Proposal) proposalEmailData {
	return proposalEmailData{
		ProposalID:  p.ID,
		Title:       p.Title,
		Description: p.Description,
		Action:      string(p.ActionType),
		Account:     p.Account.Hex(),
		Proposer:    ownerLabel(cfg, p.ProposerAddress),
		Value:       helpers.FormatEtherAmount(p.Value),
		Deadline:    p.Deadline.UTC().Format("Jan 2, 2006 15:04 MST"),
		Approvals:   multisig.CountApprovals(p, cfg),
		Required:    p.RequiredSignatures,
		Link:        fmt.Sprintf("%s/multisig/proposals/%s", n.appURL, p.ID),
	}
}

func (n *EmailNotifier) send(ctx context.Context, event string, to []string, subject string, tmpl *template.Template, data proposalEmailData) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render %s email: %w", event, err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", n.fromName, n.fromEmail),
		To:      to,
		Subject: subject,
		Html:    body.String(),
		Text:    plainText(data),
		Headers: map[string]string{
			"X-Entity-Ref-ID": data.ProposalID,
		},
		Tags: []resend.Tag{
			{Name: "category", Value: "multisig"},
			{Name: "event", Value: event},
		},
	}

	sent, err := n.emails.SendWithContext(ctx, params)
	if err != nil {
		n.logger.Error("failed to send proposal email",
			zap.Error(err),
			zap.String("event", event),
			zap.Strings("to", to))
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Info("proposal email sent",
		zap.String("email_id", sent.Id),
		zap.String("event", event),
		zap.Int("recipients", len(to)))
	return nil
}

func recipients(cfg *multisig.Config, include func(multisig.Owner) bool) []string {
	var to []string
	for _, o := range cfg.ActiveOwners() {
		if o.Email != "" && include(o) {
			to = append(to, o.Email)
		}
	}
	return to
}

func ownerLabel(cfg *multisig.Config, addr common.Address) string {
	if o, ok := cfg.Owner(addr); ok && o.DisplayName != "" {
		return o.DisplayName
	}
	return addr.Hex()
}

func plainText(d proposalEmailData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", d.Title)
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", d.Description)
	}
	fmt.Fprintf(&b, "Action: %s\nAccount: %s\nProposed by: %s\nValue: %s ETH\n", d.Action, d.Account, d.Proposer, d.Value)
	fmt.Fprintf(&b, "Signatures: %d of %d\nDeadline: %s\n\n%s\n", d.Approvals, d.Required, d.Deadline, d.Link)
	return b.String()
}

var proposalCreatedHTML = template.Must(template.New("proposal_created").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <h2>{{.Title}}</h2>
  <p>{{.Proposer}} proposed a <strong>{{.Action}}</strong> on account {{.Account}}.</p>
  {{if .Description}}<p>{{.Description}}</p>{{end}}
  <p>Value: {{.Value}} ETH<br>Signatures: {{.Approvals}} of {{.Required}}<br>Deadline: {{.Deadline}}</p>
  <p><a href="{{.Link}}">Review and sign</a></p>
</body>
</html>`))

var proposalReadyHTML = template.Must(template.New("proposal_ready").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <h2>{{.Title}} is ready to execute</h2>
  <p>The proposal on account {{.Account}} has {{.Approvals}} of {{.Required}} required signatures.</p>
  <p>It can be executed until {{.Deadline}}.</p>
  <p><a href="{{.Link}}">Open proposal</a></p>
</body>
</html>`))
