package service

import (
	"github.com/getpassword/getpassword-go/internal/crypto"
	"github.com/getpassword/getpassword-go/internal/model"
)

// GeneratorService handles one-shot password generation.
type GeneratorService struct {
	gen      *crypto.Generator
	defaults crypto.GeneratorOptions
}

// NewGeneratorService creates a new GeneratorService using defaults for
// options the request leaves out.
func NewGeneratorService(gen *crypto.Generator, defaults crypto.GeneratorOptions) *GeneratorService {
	if gen == nil {
		gen = crypto.NewGenerator(nil)
	}
	return &GeneratorService{gen: gen, defaults: defaults.Normalize()}
}

// Generate produces a password based on the given request.
func (s *GeneratorService) Generate(req model.GenerateRequest) (model.GenerateResponse, error) {
	opts := crypto.GeneratorOptions{
		Length:  intOrDefault(req.Length, s.defaults.Length),
		Numbers: boolOrDefault(req.Numbers, s.defaults.Numbers),
		Symbols: boolOrDefault(req.Symbols, s.defaults.Symbols),
	}

	password, err := s.gen.Generate(opts)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	return model.GenerateResponse{
		Password:     password,
		Length:       len(password),
		AlphabetSize: len(crypto.Alphabet(opts.Numbers, opts.Symbols)),
	}, nil
}

// boolOrDefault returns the dereferenced pointer value, or the fallback if nil.
func boolOrDefault(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

func intOrDefault(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}
