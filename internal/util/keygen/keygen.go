package keygen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Alphanumeric is safe in any context, including SQL identifiers and URLs.
	Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// PHPSafe is printable ASCII without characters that would need escaping
	// inside a single-quoted PHP string or could start an interpolation:
	// single quote, double quote, backslash and dollar.
	PHPSafe = Alphanumeric + "!#%&()*+,-./:;<=>?@[]^_`{|}~"
)

// Secret returns a random string of length n drawn from alphabet.
func Secret(n int, alphabet string) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("secret length must be positive, got %d", n)
	}
	if len(alphabet) < 2 {
		return "", fmt.Errorf("alphabet must contain at least 2 characters")
	}

	limit := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random data: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// Password returns an alphanumeric secret of length n.
func Password(n int) (string, error) {
	return Secret(n, Alphanumeric)
}
