package adminapi

import (
	"context"
	"encoding/json"
	"net/url"
)

// The upstream routes really are spelled "additonals".
const (
	privacyPath = "/additonals/privacy_policy"
	termsPath   = "/additonals/terms_conditions"
	faqPath     = "/additonals/faq"
	contactPath = "/contacts"
)

// Section is one titled block of a privacy policy, terms page or FAQ.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Document struct {
	ID        string    `json:"_id,omitempty"`
	Body      []Section `json:"body"`
	CreatedAt string    `json:"createdAt,omitempty"`
	UpdatedAt string    `json:"updatedAt,omitempty"`
}

type DocumentBody struct {
	Body []Section `json:"body"`
}

type Contact struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func (a *API) GetPrivacy(ctx context.Context) (*Raw, error) {
	return decode[json.RawMessage](a.client.Get(ctx, privacyPath, nil))
}

func (a *API) GetPrivacyByID(ctx context.Context, id string) (*Envelope[Document], error) {
	return decode[Document](a.client.Get(ctx, privacyPath+"/"+url.PathEscape(id), nil))
}

// CreatePrivacy stores a new privacy policy; the latest one is what GetPrivacy returns.
func (a *API) CreatePrivacy(ctx context.Context, body DocumentBody) (*Envelope[Document], error) {
	return decode[Document](a.client.PostJSON(ctx, privacyPath, body))
}

func (a *API) GetTerms(ctx context.Context) (*Raw, error) {
	return decode[json.RawMessage](a.client.Get(ctx, termsPath, nil))
}

func (a *API) GetTermsByID(ctx context.Context, id string) (*Envelope[Document], error) {
	return decode[Document](a.client.Get(ctx, termsPath+"/"+url.PathEscape(id), nil))
}

func (a *API) CreateTerms(ctx context.Context, body DocumentBody) (*Envelope[Document], error) {
	return decode[Document](a.client.PostJSON(ctx, termsPath, body))
}

func (a *API) ListFAQ(ctx context.Context) (*Raw, error) {
	return decode[json.RawMessage](a.client.Get(ctx, faqPath, nil))
}

func (a *API) GetFAQ(ctx context.Context, id string) (*Envelope[Document], error) {
	return decode[Document](a.client.Get(ctx, faqPath+"/"+url.PathEscape(id), nil))
}

func (a *API) CreateFAQ(ctx context.Context, body DocumentBody) (*Envelope[Document], error) {
	return decode[Document](a.client.PostJSON(ctx, faqPath, body))
}

func (a *API) UpdateFAQ(ctx context.Context, id string, body DocumentBody) (*Envelope[Document], error) {
	return decode[Document](a.client.PutJSON(ctx, faqPath+"/"+url.PathEscape(id), body))
}

func (a *API) DeleteFAQ(ctx context.Context, id string) (*Raw, error) {
	return decode[json.RawMessage](a.client.Delete(ctx, faqPath+"/"+url.PathEscape(id), nil))
}

func (a *API) ListContacts(ctx context.Context) (*Envelope[[]Contact], error) {
	return decode[[]Contact](a.client.Get(ctx, contactPath, nil))
}

func (a *API) GetContact(ctx context.Context, id string) (*Envelope[Contact], error) {
	return decode[Contact](a.client.Get(ctx, contactPath+"/"+url.PathEscape(id), nil))
}
