package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	cenv "github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Load reads the first dotenv file that exists. When ENV is set, ".env.<ENV>"
// is tried before ".env". Variables already present in the process
// environment are never overwritten. It returns the file it loaded, if any.
func Load(candidates ...string) (string, error) {
	if len(candidates) == 0 {
		candidates = DefaultFiles()
	}
	for _, f := range candidates {
		err := godotenv.Load(f)
		if err == nil {
			return f, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return "", fmt.Errorf("load %s: %w", f, err)
	}
	return "", nil
}

// DefaultFiles lists the dotenv files Load looks at when called without arguments.
func DefaultFiles() []string {
	files := []string{".env"}
	if name := Env("ENV", ""); name != "" {
		files = append([]string{".env." + strings.ToLower(name)}, files...)
	}
	return files
}

// Parse fills the struct pointed to by v from env/envDefault tags.
func Parse(v any) error {
	return cenv.Parse(v)
}

func Env(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}
