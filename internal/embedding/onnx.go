//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/docquiz/pkg/utils"
	ort "github.com/yalue/onnxruntime_go"
)

// Input and output names of the exported sentence-embedding graph.
var onnxInputNames = []string{"input_ids", "attention_mask", "token_type_ids"}

const onnxOutputName = "output"

// ONNXEmbedder runs a sentence-embedding model locally through ONNX Runtime.
// The session is bound to tensors allocated once, so inference is serialised by mu.
type ONNXEmbedder struct {
	session    *ort.AdvancedSession
	inputs     [3]*ort.Tensor[int64]
	output     *ort.Tensor[float32]
	dimensions int
	maxTokens  int
	tokenizer  Tokenizer

	mu     sync.Mutex
	closed bool
}

// NewONNXEmbedder loads the model at modelPath. The graph takes the three inputs in
// onnxInputNames, each [1, maxTokens], and emits a pooled [1, dimensions] output.
func NewONNXEmbedder(modelPath string, dimensions, maxTokens int) (*ONNXEmbedder, error) {
	if modelPath == "" {
		return nil, errors.New("onnx model path is empty")
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("onnx: invalid dimensions %d", dimensions)
	}
	if maxTokens <= 0 {
		maxTokens = 256
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
		}
	}

	e := &ONNXEmbedder{
		dimensions: dimensions,
		maxTokens:  maxTokens,
		tokenizer:  &SimpleTokenizer{},
	}
	inShape := ort.NewShape(1, int64(maxTokens))
	for i := range e.inputs {
		t, err := ort.NewTensor(inShape, make([]int64, maxTokens))
		if err != nil {
			e.release()
			return nil, fmt.Errorf("onnx: allocate %s: %w", onnxInputNames[i], err)
		}
		e.inputs[i] = t
	}
	out, err := ort.NewTensor(ort.NewShape(1, int64(dimensions)), make([]float32, dimensions))
	if err != nil {
		e.release()
		return nil, fmt.Errorf("onnx: allocate %s: %w", onnxOutputName, err)
	}
	e.output = out

	bound := make([]ort.ArbitraryTensor, len(e.inputs))
	for i, t := range e.inputs {
		bound[i] = t
	}
	e.session, err = ort.NewAdvancedSession(modelPath,
		onnxInputNames, []string{onnxOutputName},
		bound, []ort.ArbitraryTensor{e.output},
		nil,
	)
	if err != nil {
		e.release()
		return nil, fmt.Errorf("failed to create ONNX session for %s: %w", modelPath, err)
	}
	return e, nil
}

// Embed returns the unit-normalised embedding for text. Text beyond maxTokens is cut.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.New("onnx embedder is closed")
	}

	ids, mask, types := e.tokenizer.Tokenize(text, e.maxTokens)
	for i, src := range [][]int64{ids, mask, types} {
		copy(e.inputs[i].GetData(), src)
	}
	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	vec := append([]float32(nil), e.output.GetData()[:e.dimensions]...)
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch embeds texts one at a time; the bound session has batch size 1.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, e, texts)
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the session and its tensors. It is safe to call more than once.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.release()
}

func (e *ONNXEmbedder) release() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	for i, t := range e.inputs {
		if t != nil {
			_ = t.Destroy()
			e.inputs[i] = nil
		}
	}
	if e.output != nil {
		_ = e.output.Destroy()
		e.output = nil
	}
	return err
}
