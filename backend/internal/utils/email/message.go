package email

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
)

const verificationSubject = "Please confirm your email address"

func verificationBody(link string) string {
	return fmt.Sprintf(`Hello,

Please confirm your email address by following the link below.

[Confirm email](%s)

If the link does not open, copy it into your browser:

%s

The link is valid for a limited time. If you did not register, please ignore this email.
`, link, link)
}

func renderHTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func messageID(sender string) string {
	domain := "localhost"
	if _, d, ok := strings.Cut(sender, "@"); ok && d != "" {
		domain = d
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

// buildMessage renders a multipart/alternative message: the markdown source
// as text/plain and its goldmark rendering as text/html.
func (e *Email) buildMessage(recipient, subject, body string) ([]byte, error) {
	html, err := renderHTML(body)
	if err != nil {
		return nil, err
	}

	var parts bytes.Buffer
	mw := multipart.NewWriter(&parts)
	if err := mw.SetBoundary(strings.ReplaceAll(uuid.NewString(), "-", "")); err != nil {
		return nil, err
	}
	if err := writePart(mw, "text/plain; charset=\"utf-8\"", []byte(body)); err != nil {
		return nil, err
	}
	if err := writePart(mw, "text/html; charset=\"utf-8\"", html); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	encodedSubject := mime.QEncoding.Encode("utf-8", subject)
	encodedSenderName := mime.QEncoding.Encode("utf-8", e.config.SenderName)

	var msg bytes.Buffer
	fmt.Fprintf(&msg,
		"Message-ID: %s\r\n"+
			"Date: %s\r\n"+
			"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: multipart/alternative; boundary=%q\r\n"+
			"\r\n",
		messageID(e.config.SenderAddress), time.Now().Format(time.RFC1123Z), recipient,
		encodedSenderName, e.config.SenderAddress, encodedSubject, mw.Boundary(),
	)
	msg.Write(parts.Bytes())
	return msg.Bytes(), nil
}

func writePart(mw *multipart.Writer, contentType string, content []byte) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	header.Set("Content-Transfer-Encoding", "8bit")
	w, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}
