package handler

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/itchan-dev/authgate/shared/domain"
	internal_errors "github.com/itchan-dev/authgate/shared/errors"
	"github.com/itchan-dev/authgate/shared/logger"
	"github.com/microcosm-cc/bluemonday"
)

var (
	verifyPage = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Body}}</p>
</body>
</html>
`))

	// the email in the page comes from a token claim
	pagePolicy = bluemonday.StrictPolicy()
)

type verifyPageData struct {
	Title string
	Body  template.HTML
}

func writeVerificationSuccess(w http.ResponseWriter, email domain.Email) {
	body := fmt.Sprintf("<strong>%s</strong> is confirmed. You can log in now.", pagePolicy.Sanitize(email))
	renderVerifyPage(w, http.StatusOK, verifyPageData{Title: "Email confirmed", Body: template.HTML(body)})
}

func writeVerificationFailure(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) {
		statusCode = e.StatusCode
		message = e.Message
	} else {
		logger.Log.Error("unhandled verification error", "error", err)
	}

	renderVerifyPage(w, statusCode, verifyPageData{
		Title: "Email confirmation failed",
		Body:  template.HTML(pagePolicy.Sanitize(message)),
	})
}

func renderVerifyPage(w http.ResponseWriter, statusCode int, data verifyPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := verifyPage.Execute(w, data); err != nil {
		logger.Log.Error("failed to render verification page", "error", err)
	}
}
