package ocr

import (
	"context"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/draftlens/draftlens/internal/errors"
)

// DefaultLanguage is the tessdata language pack used when a job names none.
const DefaultLanguage = "eng"

// Tesseract wraps one gosseract client. The client is not safe for
// concurrent use, so every call is serialized through a mutex; concurrency
// comes from the cluster running several Tesseract instances side by side.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
	lang   string
}

// NewTesseract creates an engine configured for single-line text, which is
// the shape of every label the extractor produces.
func NewTesseract() (*Tesseract, error) {
	client := gosseract.NewClient()
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		client.Close()
		return nil, errors.Wrap(err, errors.CodeRecognitionFailure, "setting page segmentation mode")
	}
	if err := client.SetLanguage(DefaultLanguage); err != nil {
		client.Close()
		return nil, errors.Wrap(err, errors.CodeRecognitionFailure, "setting default language")
	}
	return &Tesseract{client: client, lang: DefaultLanguage}, nil
}

// Recognize runs one OCR pass over an encoded image. The blocking native
// call runs on its own goroutine so a deadline can interrupt the wait; the
// engine lock is released by that goroutine only after the call actually
// returns, so a follow-up job blocks on the mutex instead of entering the
// client mid-call.
func (t *Tesseract) Recognize(ctx context.Context, job Job) (Result, error) {
	t.mu.Lock()

	lang := job.Lang
	if lang == "" {
		lang = DefaultLanguage
	}
	if lang != t.lang {
		if err := t.client.SetLanguage(lang); err != nil {
			t.mu.Unlock()
			return Result{}, errors.Wrapf(err, errors.CodeRecognitionFailure, "switching language to %q", lang)
		}
		t.lang = lang
	}
	for k, v := range job.Params {
		if err := t.client.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			t.mu.Unlock()
			return Result{}, errors.Wrapf(err, errors.CodeRecognitionFailure, "setting variable %q", k)
		}
	}
	if err := t.client.SetImageFromBytes(job.Image); err != nil {
		t.mu.Unlock()
		return Result{}, errors.Wrap(err, errors.CodeImageDecodeFailure, "loading image into ocr engine")
	}

	text, err := runLocked(ctx, t.mu.Unlock, t.client.Text)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, errors.Wrap(err, errors.CodeRecognitionFailure, "ocr interrupted")
		}
		return Result{}, errors.Wrap(err, errors.CodeRecognitionFailure, "tesseract recognition")
	}
	return Result{Text: text}, nil
}

// runLocked executes the blocking call on its own goroutine, invoking unlock
// only once the call has returned. The select resolves the caller immediately
// on deadline while the spawned goroutine keeps holding the engine until the
// native code is actually done with it.
func runLocked(ctx context.Context, unlock func(), call func() (string, error)) (string, error) {
	type reply struct {
		text string
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		text, err := call()
		unlock()
		ch <- reply{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.text, r.err
	}
}

// Close releases the native client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
