package web

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/application/orchestrators"
	"storefront/internal/domain/inquiry"
	"storefront/internal/domain/validation"
)

// Flash codes shown on the home page after a form post.
const (
	flashContactSent   = "contact_sent"
	flashContactFailed = "contact_invalid"
	flashSubscribed    = "subscribed"
	flashSubscribeFail = "subscribe_invalid"
	flashServerError   = "error"
)

func submitContact(r *http.Request, in orchestrators.SubmitContactInput) (inquiry.ContactMessage, error) {
	return orchestrators.ExecuteSubmitContact(r.Context(), in, orchestrators.SubmitContactDeps{
		InquiryStore: stores.InquiryStore,
		OutboxStore:  stores.OutboxStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
}

func subscribe(r *http.Request, email string) (bool, error) {
	_, created, err := orchestrators.ExecuteSubscribeNewsletter(r.Context(), orchestrators.SubscribeNewsletterInput{
		Email: email,
	}, orchestrators.SubscribeNewsletterDeps{
		InquiryStore: stores.InquiryStore,
		OutboxStore:  stores.OutboxStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	return created, err
}

// handleContact handles POST /api/contact
func handleContact(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if !decodeOrReject(w, r, &input) {
		return
	}
	if _, err := submitContact(r, orchestrators.SubmitContactInput(input)); err != nil {
		writeError(w, err, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleNewsletter handles POST /api/newsletter. Subscribing an address twice succeeds.
func handleNewsletter(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if !decodeOrReject(w, r, &input) {
		return
	}
	if _, err := subscribe(r, input.Email); err != nil {
		writeError(w, err, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleContactForm handles POST /contact from the home page form.
func handleContactForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		redirectFlash(w, r, flashContactFailed, "contact")
		return
	}
	_, err := submitContact(r, orchestrators.SubmitContactInput{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	})
	redirectFlash(w, r, formOutcome(err, flashContactSent, flashContactFailed), "contact")
}

// handleNewsletterForm handles POST /newsletter from the home page form.
func handleNewsletterForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		redirectFlash(w, r, flashSubscribeFail, "newsletter")
		return
	}
	_, err := subscribe(r, r.PostFormValue("email"))
	redirectFlash(w, r, formOutcome(err, flashSubscribed, flashSubscribeFail), "newsletter")
}

// formOutcome picks the flash code for a form submission result.
func formOutcome(err error, ok, invalid string) string {
	var verrs validation.Errors
	switch {
	case err == nil:
		return ok
	case errors.As(err, &verrs):
		return invalid
	default:
		slog.Error("internal_error", "error", err.Error())
		return flashServerError
	}
}

func redirectFlash(w http.ResponseWriter, r *http.Request, flash, anchor string) {
	http.Redirect(w, r, "/?flash="+flash+"#"+anchor, http.StatusSeeOther)
}
