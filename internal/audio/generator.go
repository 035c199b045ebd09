package audio

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"microblogTTS/internal/storage"
)

// Generator produces speech for a post and returns where the audio lives.
type Generator interface {
	Generate(ctx context.Context, postID int64, text, instructions string) (string, error)
}

// Pipeline enhances the text, synthesizes it and stores the MP3 under
// audio/<postID>.mp3. An object already stored under that name is reused.
type Pipeline struct {
	enhancer TextEnhancer
	synth    Synthesizer
	store    storage.Storage
	log      *zap.SugaredLogger
}

func NewPipeline(enhancer TextEnhancer, synth Synthesizer, store storage.Storage, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{enhancer: enhancer, synth: synth, store: store, log: log}
}

func ObjectName(postID int64) string {
	return "audio/" + strconv.FormatInt(postID, 10) + ".mp3"
}

func (p *Pipeline) Generate(ctx context.Context, postID int64, text, instructions string) (string, error) {
	objectName := ObjectName(postID)

	exists, err := p.store.Exists(ctx, objectName)
	if err != nil {
		return "", err
	}
	if exists {
		p.log.Debugw("audio already stored", "post_id", postID, "object", objectName)
		return p.store.ObjectURL(objectName), nil
	}

	enhanced, err := p.enhancer.Enhance(ctx, text, instructions)
	if err != nil {
		return "", fmt.Errorf("улучшение текста поста %d: %w", postID, err)
	}

	data, err := p.synth.Synthesize(ctx, enhanced)
	if err != nil {
		return "", fmt.Errorf("синтез речи поста %d: %w", postID, err)
	}

	url, err := p.store.PutAudio(ctx, objectName, data, map[string]string{
		"post-id": strconv.FormatInt(postID, 10),
	})
	if err != nil {
		return "", err
	}

	p.log.Infow("audio generated", "post_id", postID, "bytes", len(data))
	return url, nil
}
