package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEndpoint = "https://vision.test/v1/chat/completions"

func newMockedClient(t *testing.T) *openAIClient {
	t.Helper()

	raw, err := newOpenAIClient(Config{
		APIKey:   "test-key",
		Endpoint: testEndpoint,
	})
	require.NoError(t, err)

	client, ok := raw.(*openAIClient)
	require.True(t, ok)

	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func completionBody(content string) string {
	return `{
		"id": "chatcmpl-1",
		"model": "meta-llama/llama-4-maverick-17b-128e-instruct",
		"choices": [{"message": {"role": "assistant", "content": "` + content + `"}, "finish_reason": "stop", "index": 0}],
		"usage": {"prompt_tokens": 900, "completion_tokens": 2, "total_tokens": 902}
	}`
}

func TestOpenAIClient_Predict(t *testing.T) {
	client := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, "meta-llama/llama-4-maverick-17b-128e-instruct", body["model"])

			messages, ok := body["messages"].([]any)
			require.True(t, ok)
			require.Len(t, messages, 1)
			content := messages[0].(map[string]any)["content"].([]any)
			require.Len(t, content, 2)
			imagePart := content[1].(map[string]any)
			url := imagePart["image_url"].(map[string]any)["url"].(string)
			assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

			return httpmock.NewStringResponse(http.StatusOK, completionBody("AFIB")), nil
		})

	prediction, err := client.Predict(context.Background(), []byte("fake png"), "classify this")
	require.NoError(t, err)
	assert.Equal(t, "AFIB", prediction.Label)
	assert.Zero(t, prediction.Confidence)
}

func TestOpenAIClient_TrimsWhitespace(t *testing.T) {
	client := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(http.StatusOK, completionBody("  VTACH\\n")))

	prediction, err := client.Predict(context.Background(), []byte("png"), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "VTACH", prediction.Label)
}

func TestOpenAIClient_ErrorStatus(t *testing.T) {
	client := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(http.StatusTooManyRequests, `{"error": {"message": "rate limit exceeded"}}`))

	_, err := client.Predict(context.Background(), []byte("png"), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestOpenAIClient_MalformedResponse(t *testing.T) {
	client := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(http.StatusOK, `not json`))

	_, err := client.Predict(context.Background(), []byte("png"), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	client := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(http.StatusOK, `{"id": "chatcmpl-1", "choices": []}`))

	_, err := client.Predict(context.Background(), []byte("png"), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion choices")
}

func TestNewOpenAIClient_RequiresAPIKey(t *testing.T) {
	_, err := newOpenAIClient(Config{})
	assert.Error(t, err)
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(Config{Provider: "carrier-pigeon", APIKey: "k"})
	assert.Error(t, err)
}
