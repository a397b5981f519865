package adminapi

import (
	"context"
	"encoding/json"
)

const settingsPath = "/app-settings"

func (a *API) GetSettings(ctx context.Context) (*Raw, error) {
	return decode[json.RawMessage](a.client.Get(ctx, settingsPath, nil))
}

// SaveSettings posts the settings form, logo included, as a multipart body.
func (a *API) SaveSettings(ctx context.Context, contentType string, body []byte) (*Raw, error) {
	return decode[json.RawMessage](a.client.Post(ctx, settingsPath, contentType, body))
}

func (a *API) SaveSettingsJSON(ctx context.Context, settings any) (*Raw, error) {
	return decode[json.RawMessage](a.client.PostJSON(ctx, settingsPath, settings))
}
