package clients

import (
	"context"
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	hyperliquid "github.com/sonirico/go-hyperliquid"
)

// HyperliquidClient wraps the SDK exchange. Only its Info API is used.
type HyperliquidClient struct {
	exchange    *hyperliquid.Exchange
	accountAddr string
}

// NewHyperliquidClient builds the SDK exchange for baseURL. The SDK insists on
// a signing key even for public reads; when privateKeyHex is empty a throwaway
// key is generated.
func NewHyperliquidClient(privateKeyHex string, baseURL string) (*HyperliquidClient, error) {
	privateKey, err := signingKey(privateKeyHex)
	if err != nil {
		return nil, err
	}

	pub, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("error casting public key to ECDSA")
	}
	accountAddr := crypto.PubkeyToAddress(*pub).Hex()

	ex := hyperliquid.NewExchange(
		context.Background(),
		privateKey,
		baseURL,
		nil,
		"",
		accountAddr,
		nil,
	)

	return &HyperliquidClient{exchange: ex, accountAddr: accountAddr}, nil
}

func signingKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	key := strings.TrimSpace(privateKeyHex)
	if key == "" {
		k, err := crypto.GenerateKey()
		return k, errors.Wrap(err, "generate hyperliquid key")
	}

	key = strings.TrimPrefix(strings.TrimPrefix(key, "0x"), "0X")
	k, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, errors.Wrap(err, "parse hyperliquid key")
	}
	return k, nil
}

// Info public info API.
func (c *HyperliquidClient) Info() *hyperliquid.Info { return c.exchange.Info() }

// AccountAddress address derived from the signing key.
func (c *HyperliquidClient) AccountAddress() string { return c.accountAddr }
