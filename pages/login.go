package pages

import (
	"fmt"
	"strings"

	"estate_e2e/fixtures"
	"estate_e2e/models"
)

type LoginPage struct {
	*Base
}

func NewLoginPage(b *Base) *LoginPage {
	return &LoginPage{Base: b}
}

func (p *LoginPage) Open() error {
	if err := p.Goto(p.Site.Path("login")); err != nil {
		return err
	}
	p.AcceptConsent()
	return nil
}

// FormVisible reports whether both credential fields are on screen.
func (p *LoginPage) FormVisible() bool {
	return p.Visible("login_email") && p.Visible("login_password")
}

func (p *LoginPage) FillCredentials(creds models.Credentials) error {
	if err := p.WaitVisible("login_email", waitTimeout); err != nil {
		return err
	}
	if err := p.Fill("login_email", creds.Email); err != nil {
		return err
	}
	return p.Fill("login_password", creds.Password)
}

func (p *LoginPage) Submit() (Outcome, error) {
	out, err := TryInOrder(
		p.ClickStrategy("submit button", "login_submit"),
		p.PressStrategy("enter", "login_password", "Enter"),
	)
	if err != nil {
		return out, fmt.Errorf("submit login: %w", err)
	}
	return out, nil
}

// ErrorMessage returns the visible login error, or "" when none is shown.
func (p *LoginPage) ErrorMessage() string {
	if !p.Visible("login_error") {
		return ""
	}
	text, _ := p.Text("login_error")
	return strings.TrimSpace(text)
}

func (p *LoginPage) OpenRegistration() error {
	if err := p.Click("register_tab"); err != nil {
		return err
	}
	return p.WaitVisible("register_email", waitTimeout)
}

func (p *LoginPage) FillRegistration(c fixtures.RegistrationCase) error {
	fields := []struct{ name, value string }{
		{"register_first_name", c.FirstName},
		{"register_last_name", c.LastName},
		{"register_email", c.Email},
		{"register_password", c.Password},
	}
	for _, f := range fields {
		if err := p.Fill(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func (p *LoginPage) SubmitRegistration() (Outcome, error) {
	return TryInOrder(
		p.ClickStrategy("register button", "register_submit"),
		p.PressStrategy("enter", "register_password", "Enter"),
	)
}

// ValidationErrors returns the non-empty field errors on the registration form.
func (p *LoginPage) ValidationErrors() []string {
	sel := p.Site.Selector("register_errors")
	if sel == "" {
		return nil
	}
	texts, err := p.Page.Locator(sel).AllInnerTexts()
	if err != nil {
		return nil
	}
	return nonEmpty(texts)
}
