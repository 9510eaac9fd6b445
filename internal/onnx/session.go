package onnx

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"
	ort "github.com/yalue/onnxruntime_go"
)

// ShapeMismatchError reports an input tensor whose element count does not
// match what the loaded model expects.
type ShapeMismatchError struct {
	Got  int
	Want int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("input tensor has %d values, model expects %d", e.Got, e.Want)
}

type Config struct {
	ModelPath string
	// LibraryPath overrides the onnxruntime shared library location.
	LibraryPath string
	InputName   string
	OutputName  string
	// IntraOpThreads caps per-op parallelism. Zero means min(4, NumCPU),
	// the safe setting for constrained shared hosts.
	IntraOpThreads int
	UseCuda        bool
	InputShape     []int64
}

// Session wraps a single onnxruntime session. The session itself is
// created once and shared; every Run builds its own input and output
// tensors, so concurrent calls do not step on each other.
type Session struct {
	session    *ort.DynamicAdvancedSession
	inputShape ort.Shape
	inputSize  int
}

// NewSession initializes the onnxruntime environment and loads the model
// at cfg.ModelPath. Inference runs ops sequentially (inter-op parallelism
// of 1; sequential execution and full graph optimization are the runtime
// defaults) with intra-op parallelism capped per cfg.
func NewSession(cfg Config) (*Session, error) {
	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputName := cfg.InputName
	if inputName == "" {
		inputName = "input"
	}
	outputName := cfg.OutputName
	if outputName == "" {
		outputName = "output"
	}
	shape := cfg.InputShape
	if len(shape) == 0 {
		shape = []int64{1, 3, 224, 224}
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	if err := options.SetIntraOpNumThreads(intraOpThreads(cfg.IntraOpThreads)); err != nil {
		return nil, fmt.Errorf("failed to set intra-op threads: %w", err)
	}
	if err := options.SetInterOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("failed to set inter-op threads: %w", err)
	}

	if cfg.UseCuda {
		if err := appendCuda(options); err != nil {
			log.Warn().Err(err).Msg("CUDA provider unavailable, falling back to CPU")
		}
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputName}, []string{outputName}, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	inputSize := 1
	for _, dim := range shape {
		inputSize *= int(dim)
	}
	log.Info().Msgf("Loaded model %s (input %v)", cfg.ModelPath, shape)

	return &Session{
		session:    session,
		inputShape: ort.NewShape(shape...),
		inputSize:  inputSize,
	}, nil
}

func intraOpThreads(requested int) int {
	if requested > 0 {
		return requested
	}
	threads := runtime.NumCPU()
	if threads > 4 {
		threads = 4
	}
	return threads
}

func appendCuda(options *ort.SessionOptions) error {
	cudaOptions, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return err
	}
	defer cudaOptions.Destroy()
	return options.AppendExecutionProviderCUDA(cudaOptions)
}

// Run feeds input through the model and returns one logit per class
// index. An input whose length disagrees with the model's declared shape
// fails before touching the runtime.
func (s *Session) Run(input []float32) ([]float32, error) {
	if len(input) != s.inputSize {
		return nil, &ShapeMismatchError{Got: len(input), Want: s.inputSize}
	}

	inputTensor, err := ort.NewTensor(s.inputShape, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := s.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		outputs[0].Destroy()
		return nil, fmt.Errorf("model returned a non-float32 output tensor")
	}
	defer outputTensor.Destroy()

	outputData := outputTensor.GetData()
	logits := make([]float32, len(outputData))
	copy(logits, outputData)
	return logits, nil
}

// Close destroys the session and tears down the onnxruntime environment.
func (s *Session) Close() error {
	if s.session != nil {
		if err := s.session.Destroy(); err != nil {
			return err
		}
		s.session = nil
	}
	return ort.DestroyEnvironment()
}
