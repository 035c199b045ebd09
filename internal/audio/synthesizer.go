package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"microblogTTS/internal/apperror"
)

// Synthesizer converts narration text to MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
	Speed           float64 `json:"speed"`
}

var DefaultVoiceSettings = VoiceSettings{
	Stability:       0.7,
	SimilarityBoost: 0.8,
	Style:           0.35,
	UseSpeakerBoost: true,
	Speed:           1.15,
}

// maxAudioBytes bounds the response body read from the TTS API.
const maxAudioBytes = 32 << 20

// ElevenLabsSynthesizer calls the ElevenLabs text-to-speech API.
type ElevenLabsSynthesizer struct {
	baseURL    string
	apiKey     string
	voiceID    string
	model      string
	settings   VoiceSettings
	httpClient *http.Client
}

func NewElevenLabsSynthesizer(baseURL, apiKey, voiceID, model string, httpClient *http.Client) *ElevenLabsSynthesizer {
	return &ElevenLabsSynthesizer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		voiceID:    voiceID,
		model:      model,
		settings:   DefaultVoiceSettings,
		httpClient: httpClient,
	}
}

func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	path := "/text-to-speech/" + url.PathEscape(s.voiceID)
	payload := map[string]any{
		"text":           text,
		"model_id":       s.model,
		"voice_settings": s.settings,
	}

	resp, err := postJSON(ctx, s.httpClient, s.baseURL+path+"?output_format=mp3_44100_128",
		map[string]string{"xi-api-key": s.apiKey, "Accept": "audio/mpeg"}, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "elevenlabs", path); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, apperror.Upstream("elevenlabs response unreadable", fmt.Errorf("elevenlabs %s: read: %w", path, err))
	}
	if len(data) == 0 {
		return nil, apperror.Upstream("elevenlabs returned no audio", nil)
	}
	return data, nil
}
