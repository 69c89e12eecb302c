package command

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/hkdf"

	"github.com/yndnr/ptagate/pkg/crypto/blockcbc"
	"github.com/yndnr/ptagate/pkg/hexcodec"
)

// hkdfInfo binds derived material to this use.
const hkdfInfo = "ptagate key/iv v1"

// KeyPairOutput is a key/IV pair ready to paste into the pta section.
type KeyPairOutput struct {
	Key string `json:"key" yaml:"key"`
	IV  string `json:"iv" yaml:"iv"`
}

// KeygenCommand returns the keygen command.
func KeygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Generate an AES-128 key and IV as hex",
		Description: "Without flags the pair is random. With --from-secret the pair is derived\n" +
			"with HKDF-SHA256, so the issuer and the gate can compute it independently.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "from-secret",
				Usage:   "Derive the pair from this secret",
				EnvVars: []string{"PTA_KEYGEN_SECRET"},
			},
			&cli.StringFlag{
				Name:  "salt",
				Usage: "HKDF salt used with --from-secret",
			},
		},
		Action: keygen,
	}
}

func keygen(c *cli.Context) error {
	var (
		pair KeyPairOutput
		err  error
	)
	if c.IsSet("from-secret") {
		pair, err = DeriveKeyPair(c.String("from-secret"), c.String("salt"))
	} else {
		pair, err = GenerateKeyPair(rand.Reader)
	}
	if err != nil {
		return err
	}
	return render(c, pair)
}

// GenerateKeyPair reads a key and an IV from r.
func GenerateKeyPair(r io.Reader) (KeyPairOutput, error) {
	buf := make([]byte, blockcbc.KeySize+blockcbc.BlockSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return KeyPairOutput{}, err
	}
	return splitPair(buf), nil
}

// DeriveKeyPair derives a key and an IV from secret and salt.
func DeriveKeyPair(secret, salt string) (KeyPairOutput, error) {
	if secret == "" {
		return KeyPairOutput{}, errors.New("secret must not be empty")
	}
	r := hkdf.New(sha256.New, []byte(secret), []byte(salt), []byte(hkdfInfo))
	return GenerateKeyPair(r)
}

func splitPair(buf []byte) KeyPairOutput {
	return KeyPairOutput{
		Key: hexcodec.Encode(buf[:blockcbc.KeySize]),
		IV:  hexcodec.Encode(buf[blockcbc.KeySize:]),
	}
}
