/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package identity provides the software signing identity of a client,
// built from a PEM enrollment certificate and ECDSA private key.
package identity

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"math/big"

	"github.com/cloudflare/cfssl/helpers"
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	mb "github.com/hyperledger/fabric-protos-go/msp"
	"github.com/pkg/errors"
)

var logger = logging.NewLogger("fabsdk/fab")

type ecdsaSignature struct {
	R, S *big.Int
}

// SigningIdentity signs with an ECDSA key on behalf of an MSP member
type SigningIdentity struct {
	mspID   string
	certPEM []byte
	cert    *x509.Certificate
	key     *ecdsa.PrivateKey
}

// New creates a signing identity from a PEM certificate and the PEM
// private key matching it
func New(mspID string, certPEM, keyPEM []byte) (*SigningIdentity, error) {
	if mspID == "" {
		return nil, errors.New("mspID is required")
	}

	cert, err := helpers.ParseCertificatePEM(certPEM)
	if err != nil {
		return nil, errors.WithMessage(err, "parsing enrollment certificate failed")
	}

	signer, err := helpers.ParsePrivateKeyPEM(keyPEM)
	if err != nil {
		return nil, errors.WithMessage(err, "parsing private key failed")
	}
	key, ok := signer.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.Errorf("unsupported private key type %T", signer)
	}

	pub, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok || pub.X.Cmp(key.X) != 0 || pub.Y.Cmp(key.Y) != 0 {
		return nil, errors.New("private key does not match the enrollment certificate")
	}

	logger.Debugf("Loaded signing identity %s of MSP %s", cert.Subject.CommonName, mspID)
	return &SigningIdentity{mspID: mspID, certPEM: certPEM, cert: cert, key: key}, nil
}

// MSPID returns the MSP of the identity
func (id *SigningIdentity) MSPID() string {
	return id.mspID
}

// Certificate returns the enrollment certificate
func (id *SigningIdentity) Certificate() *x509.Certificate {
	return id.cert
}

// Serialize returns the marshalled msp.SerializedIdentity
func (id *SigningIdentity) Serialize() ([]byte, error) {
	return proto.Marshal(&mb.SerializedIdentity{Mspid: id.mspID, IdBytes: id.certPEM})
}

// Sign returns the DER encoded ECDSA signature of the SHA-256 digest of
// msg, with S normalized to the lower half of the curve order
func (id *SigningIdentity) Sign(msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)

	r, s, err := ecdsa.Sign(rand.Reader, id.key, digest[:])
	if err != nil {
		return nil, errors.Wrap(err, "signing failed")
	}

	s = toLowS(id.key.Curve, s)
	return asn1.Marshal(ecdsaSignature{r, s})
}

// Verify checks a signature produced by Sign
func (id *SigningIdentity) Verify(msg, signature []byte) error {
	sig := ecdsaSignature{}
	if _, err := asn1.Unmarshal(signature, &sig); err != nil {
		return errors.Wrap(err, "unmarshal signature failed")
	}
	if sig.R == nil || sig.S == nil || sig.R.Sign() <= 0 || sig.S.Sign() <= 0 {
		return errors.New("invalid signature")
	}
	if !isLowS(id.key.Curve, sig.S) {
		return errors.New("signature S is not in the lower half of the curve order")
	}

	digest := sha256.Sum256(msg)
	if !ecdsa.Verify(&id.key.PublicKey, digest[:], sig.R, sig.S) {
		return errors.New("signature verification failed")
	}
	return nil
}

func halfOrder(curve elliptic.Curve) *big.Int {
	return new(big.Int).Rsh(curve.Params().N, 1)
}

func isLowS(curve elliptic.Curve, s *big.Int) bool {
	return s.Cmp(halfOrder(curve)) != 1
}

func toLowS(curve elliptic.Curve, s *big.Int) *big.Int {
	if isLowS(curve, s) {
		return s
	}
	return new(big.Int).Sub(curve.Params().N, s)
}
