// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"math"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dotandev/simauto/internal/auxfile"
	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/logger"
	"github.com/dotandev/simauto/internal/session"
	"github.com/dotandev/simauto/internal/table"
)

// ServiceName is the JSON-RPC namespace: methods are "Session.Open" and so on.
const ServiceName = "Session"

// Service exposes one Session over JSON-RPC. Requests are serialized; the
// Session itself does no locking.
type Service struct {
	mu   sync.Mutex
	sess *session.Session
	root string
}

type ServiceOption func(*Service)

// WithCaseRoot confines the paths clients name (cases to open, save
// targets, auxiliary exports) to root and its subdirectories. Auxiliary
// text is written next to the open case, so it stays under root too.
func WithCaseRoot(root string) ServiceOption {
	return func(s *Service) { s.root = root }
}

func NewService(sess *session.Session, opts ...ServiceOption) *Service {
	s := &Service{sess: sess}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checkPath rejects paths outside the case root. Without a root every path
// is accepted.
func (s *Service) checkPath(path string) error {
	if s.root == "" || path == "" {
		return nil
	}
	root, err := filepath.Abs(s.root)
	if err != nil {
		return errors.WrapContractViolation("case root %q: %v", s.root, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.WrapContractViolation("path %q: %v", path, err)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		logger.Logger.Warn("Rejected path outside the case root", "path", path, "root", root)
		return errors.WrapContractViolation("path %q is outside the served case root %s", path, root)
	}
	return nil
}

type NoArgs struct{}

type PathArgs struct {
	Path string `json:"path"`
}

type ScriptArgs struct {
	Command string `json:"command"`
}

type TextArgs struct {
	Text string `json:"text"`
}

type AuxExportArgs struct {
	Export session.AuxExport `json:"export"`
}

type SingleElementArgs struct {
	ObjectType string   `json:"object_type"`
	Fields     []string `json:"fields"`
	Values     []any    `json:"values"`
}

type MultipleElementArgs struct {
	ObjectType string   `json:"object_type"`
	Fields     []string `json:"fields"`
	Filter     string   `json:"filter,omitempty"`
}

type ObjectTypeArgs struct {
	ObjectType string `json:"object_type"`
}

type FaultArgs struct {
	Bus int `json:"bus"`
}

type FilterArgs struct {
	Filter auxfile.Filter `json:"filter"`
}

type TLRArgs struct {
	Request session.TLRRequest `json:"request"`
}

type ExcelArgs struct {
	ObjectType string   `json:"object_type"`
	Filter     string   `json:"filter,omitempty"`
	Fields     []string `json:"fields,omitempty"`
}

type TableReply struct {
	Result
	Table *table.Table `json:"table,omitempty"`
}

type FaultReply struct {
	Result
	Magnitude float64 `json:"magnitude"`
	OK        bool    `json:"ok"`
}

type StatusReply struct {
	Result
	ID       string `json:"id"`
	CasePath string `json:"case_path"`
	CaseOpen bool   `json:"case_open"`
	Released bool   `json:"released"`
}

// Session errors travel in the reply's Fault; a non-nil return from these
// methods is reserved for transport problems.

func (s *Service) Open(r *http.Request, args *PathArgs, reply *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkPath(args.Path); err != nil {
		reply.setErr(err)
		return nil
	}
	if args.Path != "" && args.Path != s.sess.CasePath() {
		if err := s.sess.SetCasePath(args.Path); err != nil {
			reply.setErr(err)
			return nil
		}
	}
	reply.setErr(s.sess.Open())
	return nil
}

func (s *Service) Save(r *http.Request, args *NoArgs, reply *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply.setErr(s.sess.Save())
	return nil
}

func (s *Service) SaveAs(r *http.Request, args *PathArgs, reply *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkPath(args.Path); err != nil {
		reply.setErr(err)
		return nil
	}
	reply.setErr(s.sess.SaveAs(args.Path))
	return nil
}

func (s *Service) SaveAsAuxiliary(r *http.Request, args *AuxExportArgs, reply *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkPath(args.Export.Path); err != nil {
		reply.setErr(err)
		return nil
	}
	reply.setErr(s.sess.SaveAsAuxiliary(args.Export))
	return nil
}

func (s *Service) Close(r *http.Request, args *NoArgs, reply *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply.setErr(s.sess.Close())
	return nil
}

func (s *Service) RunScript(r *http.Request, args *ScriptArgs, reply *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply.setErr(s.sess.RunScript(args.Command))
	return nil
}

func (s *Service) LoadAuxiliaryText(r *http.Request, args *TextArgs, reply *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply.setErr(s.sess.LoadAuxiliaryText(args.Text))
	return nil
}

func (s *Service) GetSingleElement(r *http.Request, args *SingleElementArgs, reply *TableReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.sess.GetSingleElement(args.ObjectType, args.Fields, integralValues(args.Values))
	reply.Table = t
	reply.setErr(err)
	return nil
}

func (s *Service) GetMultipleElements(r *http.Request, args *MultipleElementArgs, reply *TableReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.sess.GetMultipleElements(args.ObjectType, args.Fields, args.Filter)
	reply.Table = t
	reply.setErr(err)
	return nil
}

func (s *Service) GetFieldList(r *http.Request, args *ObjectTypeArgs, reply *TableReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.sess.GetFieldList(args.ObjectType)
	reply.Table = t
	reply.setErr(err)
	return nil
}

func (s *Service) ThreePhaseFaultCurrent(r *http.Request, args *FaultArgs, reply *FaultReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mag, ok, err := s.sess.ThreePhaseFaultCurrent(args.Bus)
	reply.Magnitude, reply.OK = mag, ok
	reply.setErr(err)
	return nil
}

func (s *Service) CreateFilter(r *http.Request, args *FilterArgs, reply *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply.setErr(s.sess.CreateFilter(args.Filter))
	return nil
}

func (s *Service) CalculateTLR(r *http.Request, args *TLRArgs, reply *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply.setErr(s.sess.CalculateTLR(args.Request))
	return nil
}

func (s *Service) SendToExcel(r *http.Request, args *ExcelArgs, reply *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply.setErr(s.sess.SendToExcel(args.ObjectType, args.Filter, args.Fields))
	return nil
}

func (s *Service) Status(r *http.Request, args *NoArgs, reply *StatusReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply.ID = s.sess.ID()
	reply.CasePath = s.sess.CasePath()
	reply.CaseOpen = s.sess.CaseOpen()
	reply.Released = s.sess.Released()
	return nil
}

// Shutdown releases the served Session. Later requests report
// errors.ErrSessionReleased.
func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger.Logger.Info("Releasing served session", "session", s.sess.ID())
	return s.sess.Release()
}

// integralValues turns JSON numbers that are whole back into ints, so bus
// numbers reach the engine as integers.
func integralValues(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < math.MaxInt32 {
			out[i] = int(f)
			continue
		}
		out[i] = v
	}
	return out
}
