//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Demux notification mailer.
//
package mail

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"
)

type Mailer struct {
	InstanceName string
	host         string
	port         int
	senderEmail  string
	notifyEmail  string
	debug        bool
}

func NewMailer(instanceName string, smtphost string, senderEmail string, notifyEmail string,
	debug bool) *Mailer {

	self := &Mailer{}
	self.InstanceName = strings.ToLower(instanceName)
	self.host = smtphost
	self.port = 25
	self.senderEmail = senderEmail
	self.notifyEmail = notifyEmail
	self.debug = debug
	return self
}

type smtpTemplateData struct {
	From    string
	To      string
	Subject string
	Body    string
}

const emailTemplate = `From: {{.From}}
To: {{.To}}
Subject: {{.Subject}}

{{.Body}}

SCGPM demux
`

func (self *Mailer) Sendmail(to []string, subject string, body string) error {
	var doc bytes.Buffer

	// If debug mode, put name of instance in subject line.
	if self.debug {
		subject = fmt.Sprintf("DEBUG - %s %s", strings.ToUpper(self.InstanceName), subject)
	}

	// Only add individual recipients if not in debug mode.
	recipients := []string{self.notifyEmail}
	if !self.debug {
		recipients = append(recipients, to...)
	}

	context := &smtpTemplateData{
		fmt.Sprintf("SCGPM Demux <%s>", self.senderEmail),
		strings.Join(recipients, ", "),
		subject,
		body,
	}

	t := template.New("emailTemplate")
	t, _ = t.Parse(emailTemplate)
	_ = t.Execute(&doc, context)

	return smtp.SendMail(
		fmt.Sprintf("%s:%d", self.host, self.port),
		nil,
		self.senderEmail,
		recipients,
		doc.Bytes(),
	)
}
