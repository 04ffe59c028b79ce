/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channel

import (
	reqContext "context"
	"crypto/x509"

	"github.com/cloudflare/cfssl/helpers"
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/events/seek"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/txn"
	"github.com/hyperledger/fabric-protos-go/common"
	mb "github.com/hyperledger/fabric-protos-go/msp"
	"github.com/pkg/errors"
)

const (
	applicationGroup = "Application"
	ordererGroup     = "Orderer"
	mspKey           = "MSP"
	ordererAddresses = "OrdererAddresses"
)

// Config is the part of the channel configuration a client uses
type Config struct {
	// BlockNumber is the number of the config block
	BlockNumber uint64
	// Sequence is the config sequence number
	Sequence uint64
	// MSPs of the application and orderer organizations, by MSP ID
	MSPs map[string]*mb.FabricMSPConfig
	// OrdererAddresses as announced by the channel
	OrdererAddresses []string
}

// MSPIDs returns the IDs of the organizations of the channel
func (cfg *Config) MSPIDs() []string {
	var ids []string
	for id := range cfg.MSPs {
		ids = append(ids, id)
	}
	return ids
}

// ConfigLoader holds the steps Initialize runs to learn the channel
// configuration
type ConfigLoader interface {
	// ParseConfigBlock fetches and parses the current config block. A nil
	// config means nothing could be loaded.
	ParseConfigBlock(ctx reqContext.Context, ch *Channel) (*Config, error)
	// LoadCACertificates returns the CA certificates of cfg
	LoadCACertificates(ch *Channel, cfg *Config) ([]*x509.Certificate, error)
}

// BlockConfigLoader reads the latest config block from the orderers of
// the channel. Channels without orderers are left unconfigured.
type BlockConfigLoader struct{}

// ParseConfigBlock retrieves the newest block, follows its last config
// index and parses that config block
func (l *BlockConfigLoader) ParseConfigBlock(ctx reqContext.Context, ch *Channel) (*Config, error) {
	orderers := ch.ordererList()
	if len(orderers) == 0 {
		logger.Debugf("Channel %s has no orderers, skipping config block", ch.Name())
		return nil, nil
	}

	reqCtx, cancel := reqContext.WithTimeout(ctx, ch.opts.ordererTimeout)
	defer cancel()

	block, err := txn.RetrieveBlock(reqCtx, ch.signer(), ch.Name(), seek.InfoLatestBlock(), orderers)
	if err != nil {
		return nil, errors.WithMessage(err, "retrieving latest block failed")
	}

	lastConfig, err := LastConfigIndex(block)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Channel %s last config index: %d", ch.Name(), lastConfig)

	if block.Header.Number != lastConfig {
		block, err = txn.RetrieveBlock(reqCtx, ch.signer(), ch.Name(), seek.InfoBlock(lastConfig), orderers)
		if err != nil {
			return nil, errors.WithMessagef(err, "retrieving config block %d failed", lastConfig)
		}
	}

	return ParseConfigBlock(block)
}

// LoadCACertificates parses the root and intermediate certificates of
// every MSP of cfg
func (l *BlockConfigLoader) LoadCACertificates(ch *Channel, cfg *Config) ([]*x509.Certificate, error) {
	if cfg == nil {
		return nil, nil
	}

	var certs []*x509.Certificate
	for id, msp := range cfg.MSPs {
		for _, pem := range append(append([][]byte(nil), msp.RootCerts...), msp.IntermediateCerts...) {
			parsed, err := helpers.ParseCertificatesPEM(pem)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing CA certificate of MSP %s failed", id)
			}
			certs = append(certs, parsed...)
		}
	}
	return certs, nil
}

// LastConfigIndex returns the number of the config block in effect for
// block
func LastConfigIndex(block *common.Block) (uint64, error) {
	if block.Metadata == nil || len(block.Metadata.Metadata) <= int(common.BlockMetadataIndex_SIGNATURES) {
		return 0, errors.New("block metadata is nil")
	}

	// blocks written by v2 orderers carry the index with the signatures
	metadata := &common.Metadata{}
	if err := proto.Unmarshal(block.Metadata.Metadata[common.BlockMetadataIndex_SIGNATURES], metadata); err != nil {
		return 0, errors.Wrap(err, "unmarshal block metadata failed")
	}
	if len(metadata.Value) > 0 {
		obm := &common.OrdererBlockMetadata{}
		if err := proto.Unmarshal(metadata.Value, obm); err != nil {
			return 0, errors.Wrap(err, "unmarshal orderer block metadata failed")
		}
		if obm.LastConfig != nil {
			return obm.LastConfig.Index, nil
		}
	}

	metadata = &common.Metadata{}
	if err := proto.Unmarshal(block.Metadata.Metadata[common.BlockMetadataIndex_LAST_CONFIG], metadata); err != nil {
		return 0, errors.Wrap(err, "unmarshal block metadata failed")
	}
	lastConfig := &common.LastConfig{}
	if err := proto.Unmarshal(metadata.Value, lastConfig); err != nil {
		return 0, errors.Wrap(err, "unmarshal last config from metadata failed")
	}
	return lastConfig.Index, nil
}

// ParseConfigBlock extracts the MSPs and orderer addresses of a config block
func ParseConfigBlock(block *common.Block) (*Config, error) {
	if block.Data == nil || len(block.Data.Data) != 1 {
		return nil, errors.New("config block must contain one transaction")
	}

	envelope := &common.Envelope{}
	if err := proto.Unmarshal(block.Data.Data[0], envelope); err != nil {
		return nil, errors.Wrap(err, "unmarshal envelope from config block failed")
	}
	payload := &common.Payload{}
	if err := proto.Unmarshal(envelope.Payload, payload); err != nil {
		return nil, errors.Wrap(err, "unmarshal payload from envelope failed")
	}
	if payload.Header == nil {
		return nil, errors.New("payload header is nil")
	}
	chdr := &common.ChannelHeader{}
	if err := proto.Unmarshal(payload.Header.ChannelHeader, chdr); err != nil {
		return nil, errors.Wrap(err, "unmarshal channel header failed")
	}
	if common.HeaderType(chdr.Type) != common.HeaderType_CONFIG {
		return nil, errors.Errorf("block %d is not a config block", block.Header.Number)
	}

	configEnvelope := &common.ConfigEnvelope{}
	if err := proto.Unmarshal(payload.Data, configEnvelope); err != nil {
		return nil, errors.Wrap(err, "unmarshal config envelope failed")
	}
	if configEnvelope.Config == nil || configEnvelope.Config.ChannelGroup == nil {
		return nil, errors.New("config envelope has no channel group")
	}

	cfg := &Config{
		BlockNumber: block.Header.Number,
		Sequence:    configEnvelope.Config.Sequence,
		MSPs:        make(map[string]*mb.FabricMSPConfig),
	}

	group := configEnvelope.Config.ChannelGroup
	for _, name := range []string{applicationGroup, ordererGroup} {
		orgs, ok := group.Groups[name]
		if !ok {
			continue
		}
		for org, orgGroup := range orgs.Groups {
			msp, err := orgMSP(orgGroup)
			if err != nil {
				return nil, errors.WithMessagef(err, "loading MSP of organization %s failed", org)
			}
			if msp != nil {
				cfg.MSPs[msp.Name] = msp
			}
		}
	}

	if v, ok := group.Values[ordererAddresses]; ok {
		addresses := &common.OrdererAddresses{}
		if err := proto.Unmarshal(v.Value, addresses); err != nil {
			return nil, errors.Wrap(err, "unmarshal orderer addresses failed")
		}
		cfg.OrdererAddresses = addresses.Addresses
	}

	return cfg, nil
}

func orgMSP(group *common.ConfigGroup) (*mb.FabricMSPConfig, error) {
	v, ok := group.Values[mspKey]
	if !ok {
		return nil, nil
	}
	mspConfig := &mb.MSPConfig{}
	if err := proto.Unmarshal(v.Value, mspConfig); err != nil {
		return nil, errors.Wrap(err, "unmarshal MSP config failed")
	}
	// only fabric MSPs carry certificates
	if mspConfig.Type != 0 {
		return nil, nil
	}
	fabricConfig := &mb.FabricMSPConfig{}
	if err := proto.Unmarshal(mspConfig.Config, fabricConfig); err != nil {
		return nil, errors.Wrap(err, "unmarshal FabricMSPConfig from config failed")
	}
	return fabricConfig, nil
}
