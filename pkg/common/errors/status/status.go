/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package status attaches metadata to errors raised while talking to
// peers, orderers and event sources. Codes are grouped by the component
// that produced them so callers can tell a transport failure from an
// endorser rejection or a client side validation failure.
package status

import (
	"fmt"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/multi"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
	grpcstatus "google.golang.org/grpc/status"
)

// Status provides additional information about an unsuccessful remote or
// client side operation.
type Status struct {
	// Group status group
	Group Group
	// Code status code
	Code int32
	// Message status message
	Message string
	// Details any additional status details
	Details []interface{}
}

// Group of status to help users infer status codes from various components
type Group int32

const (
	// UnknownStatus unknown status group
	UnknownStatus Group = iota

	// GRPCTransportStatus is the status associated with requests made over
	// gRPC connections
	GRPCTransportStatus

	// EndorserServerStatus status returned by the endorser server
	EndorserServerStatus
	// EventServerStatus status returned by the event service
	EventServerStatus
	// OrdererServerStatus status returned by the ordering service
	OrdererServerStatus

	// EndorserClientStatus status inferred by the client from endorser responses
	EndorserClientStatus
	// OrdererClientStatus status inferred by the client while talking to orderers
	OrdererClientStatus
	// ClientStatus is a generic client status
	ClientStatus
)

// GroupName maps the groups in this packages to human-readable strings
var GroupName = map[int32]string{
	0: "Unknown",
	1: "gRPC Transport Status",
	2: "Endorser Server Status",
	3: "Event Server Status",
	4: "Orderer Server Status",
	5: "Endorser Client Status",
	6: "Orderer Client Status",
	7: "Client Status",
}

func (g Group) String() string {
	if s, ok := GroupName[int32(g)]; ok {
		return s
	}
	return UnknownStatus.String()
}

// FromError returns a Status representing err if available,
// otherwise it returns nil, false.
func FromError(err error) (s *Status, ok bool) {
	if err == nil {
		return &Status{Code: int32(OK)}, true
	}
	if s, ok := err.(*Status); ok {
		return s, true
	}
	cause := errors.Cause(err)
	if s, ok := cause.(*Status); ok {
		return s, true
	}
	if m, ok := cause.(multi.Errors); ok {
		var details []interface{}
		for _, e := range m {
			details = append(details, e)
		}
		return New(ClientStatus, MultipleErrors.ToInt32(), m.Error(), details), true
	}

	return nil, false
}

func (s *Status) Error() string {
	return fmt.Sprintf("%s Code: (%d) %s. Description: %s", s.Group.String(), s.Code, s.codeString(), s.Message)
}

func (s *Status) codeString() string {
	switch s.Group {
	case GRPCTransportStatus:
		return ToGRPCStatusCode(s.Code).String()
	case EndorserServerStatus, OrdererServerStatus:
		return ToFabricCommonStatusCode(s.Code).String()
	case EventServerStatus:
		return ToTransactionValidationCode(s.Code).String()
	case EndorserClientStatus, OrdererClientStatus, ClientStatus:
		return ToSDKStatusCode(s.Code).String()
	default:
		return Unknown.String()
	}
}

// New returns a Status with the given parameters
func New(group Group, code int32, msg string, details []interface{}) *Status {
	return &Status{Group: group, Code: code, Message: msg, Details: details}
}

// NewFromProposalResponse creates a status from the response of the given
// endorser. Details hold the endorser URL and the response payload.
func NewFromProposalResponse(res *pb.ProposalResponse, endorser string) *Status {
	if res == nil || res.Response == nil {
		return nil
	}
	details := []interface{}{endorser, res.Response.Payload}

	return New(EndorserServerStatus, res.Response.Status, res.Response.Message, details)
}

// NewFromGRPCStatus new Status from gRPC status response
func NewFromGRPCStatus(s *grpcstatus.Status) *Status {
	if s == nil {
		return nil
	}
	details := make([]interface{}, len(s.Proto().Details))
	for i, detail := range s.Proto().Details {
		details[i] = detail
	}

	return &Status{Group: GRPCTransportStatus, Code: s.Proto().Code,
		Message: s.Message(), Details: details}
}
