package email

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`
<p>Hola {{.Name}},</p>
<p>Tu código de verificación de Red Guardián es <strong>{{.Code}}</strong>.</p>
<p>Ingresa el código para habilitar tu cuenta.</p>`))

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<p>Hola {{.Name}},</p>
<p>Recibimos una solicitud para restablecer tu contraseña.</p>
<p>Tu código de restablecimiento es <strong>{{.Code}}</strong>. Si no fuiste tú, ignora este correo.</p>`))

type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(host string, port int, username, password, from string) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *Sender) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return s.dialer.DialAndSend(m)
}

func (s *Sender) SendVerificationEmail(to, name, code string) error {
	body, err := render(verificationTmpl, map[string]string{"Name": name, "Code": code})
	if err != nil {
		return err
	}
	return s.sendEmail(to, "Verifica tu correo — Red Guardián", body)
}

func (s *Sender) SendPasswordResetEmail(to, name, code string) error {
	body, err := render(passwordResetTmpl, map[string]string{"Name": name, "Code": code})
	if err != nil {
		return err
	}
	return s.sendEmail(to, "Restablecer contraseña — Red Guardián", body)
}

func render(t *template.Template, data any) (string, error) {
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
