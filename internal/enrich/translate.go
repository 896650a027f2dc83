// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"

	"github.com/pdiddy/weekly-radar/internal/httputil"
)

// translateAPIBase is the Cloud Translation v2 endpoint. Declared as a var
// so tests can substitute an httptest server.
var translateAPIBase = "https://translation.googleapis.com/language/translate/v2"

// MaxTranslateChars bounds the text sent for translation.
const MaxTranslateChars = 5000

// Translator is the translation capability. Implementations fail with an
// httputil.ProviderError; callers treat every failure as non-fatal.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// GoogleTranslator calls the Cloud Translation v2 REST API.
type GoogleTranslator struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
}

// Translate returns text translated from sourceLang to targetLang. Text
// longer than MaxTranslateChars is truncated first.
func (t *GoogleTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if t.APIKey == "" {
		return "", httputil.Unavailable("translate", 0, errors.New("missing API key"))
	}
	body, err := json.Marshal(translateRequest{
		Q:      truncateRunes(text, MaxTranslateChars),
		Source: sourceLang,
		Target: targetLang,
		Format: "text",
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		translateAPIBase+"?"+url.Values{"key": {t.APIKey}}.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", t.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, t.Client, req, 0)
	if err != nil {
		return "", httputil.Unavailable("translate", 0, err)
	}
	defer resp.Body.Close()
	if err := httputil.CheckResponse("translate", resp); err != nil {
		return "", err
	}

	var tr translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", httputil.Unavailable("translate", 0, fmt.Errorf("parsing response: %w", err))
	}
	if len(tr.Data.Translations) == 0 || tr.Data.Translations[0].TranslatedText == "" {
		return "", httputil.Unavailable("translate", 0, errors.New("empty translation"))
	}
	return html.UnescapeString(tr.Data.Translations[0].TranslatedText), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source,omitempty"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}
