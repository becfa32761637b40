package rpc

import (
	"sort"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ValidationStatus returns a status carrying d: field keys as a BadRequest
// detail, one ErrorInfo per conflict key.
func ValidationStatus(code codes.Code, msg string, d ValidationDetails) *status.Status {
	st := status.New(code, msg)

	fields := make([]string, 0, len(d.Fields))
	for f := range d.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	if len(fields) > 0 {
		br := &errdetails.BadRequest{}
		for _, f := range fields {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       f,
				Description: d.Fields[f],
			})
		}
		if next, err := st.WithDetails(br); err == nil {
			st = next
		}
	}
	for _, key := range d.Conflicts {
		info := &errdetails.ErrorInfo{Reason: key, Domain: ServiceName}
		if next, err := st.WithDetails(info); err == nil {
			st = next
		}
	}
	return st
}

// ValidationFromStatus recovers the message keys attached by
// ValidationStatus. It returns nil when st carries none.
func ValidationFromStatus(st *status.Status) *ValidationDetails {
	d := &ValidationDetails{}
	for _, detail := range st.Details() {
		switch v := detail.(type) {
		case *errdetails.BadRequest:
			for _, fv := range v.GetFieldViolations() {
				if d.Fields == nil {
					d.Fields = make(map[string]string)
				}
				d.Fields[fv.GetField()] = fv.GetDescription()
			}
		case *errdetails.ErrorInfo:
			if v.GetDomain() == ServiceName {
				d.Conflicts = append(d.Conflicts, v.GetReason())
			}
		}
	}
	if d.Empty() {
		return nil
	}
	return d
}
