package coder

import (
	"sync"

	"github.com/blockberries/binschema/pkg/schema"
)

// frameKind discriminates the variant a frame holds. Go has no sum type,
// so frame is a flat struct carrying whichever fields its kind uses, the
// same style the schema package uses for Schema itself.
type frameKind int

const (
	frameNeed frameKind = iota
	frameAutoFinish
	frameSeq
	frameTuple
	frameStruct
	frameEnum
)

type frame struct {
	kind frameKind

	// frameNeed: the schema node the next single coding call must satisfy.
	need *schema.Schema

	// frameSeq
	elem      *schema.Schema
	fixedLen  bool
	remaining int
	lenSet    bool

	// frameTuple
	elems []schema.Schema
	idx   int

	// frameStruct
	fields []schema.Field

	// frameEnum and frameAutoFinish (when AutoFinish stands in for an
	// enum-variant choice): the enclosing enum's own variant list, needed
	// to reconstruct the enum's schema if a Recurse node resolves here.
	variants []schema.Variant

	// frameAutoFinish (when AutoFinish stands in for an Option-some):
	// the Option's own schema, needed to reconstruct it if a Recurse node
	// resolves here (e.g. an Option directly containing itself).
	optSchema *schema.Schema

	// frameSeq: the Seq's own schema, needed to reconstruct it if a Recurse
	// node resolves here.
	seqSchema *schema.Schema
}

// CoderStateAlloc is an opaque handle to a recycled frame-stack buffer. It
// carries no schema or position information of its own; it exists purely so
// a finished CoderState's backing array can be handed to a new session
// instead of allocated fresh, mirroring the teacher's sync.Pool-based
// buffer reuse in pool.go generalized from byte buffers to frame stacks.
type CoderStateAlloc struct {
	stack []frame
}

var allocPool = sync.Pool{
	New: func() any { return &CoderStateAlloc{} },
}

// GetAlloc retrieves a CoderStateAlloc from the shared pool, allocating a
// new one only if the pool is empty.
func GetAlloc() *CoderStateAlloc {
	return allocPool.Get().(*CoderStateAlloc)
}

// PutAlloc returns alloc to the shared pool for reuse by a future
// CoderState. Callers must not use alloc after calling PutAlloc.
func PutAlloc(alloc *CoderStateAlloc) {
	if alloc == nil {
		return
	}
	alloc.stack = alloc.stack[:0]
	allocPool.Put(alloc)
}

// CoderState is the schema-validating stack automaton shared by Encoder and
// Decoder. It does not itself read or write bytes; it tracks, for a single
// top-to-bottom traversal of a value conforming to root, which coding call
// is legal next, erroring the moment a call does not match.
//
// A CoderState becomes permanently broken after any error: every method
// called afterward fails immediately with ErrBroken, mirroring the
// teacher's sticky-error Writer.
type CoderState struct {
	root    *schema.Schema
	stack   []frame
	broken  error
	started bool
}

// New creates a CoderState that validates coding calls against root.
// If alloc is non-nil its backing frame buffer is reused; pass nil to
// allocate fresh.
func New(root *schema.Schema, alloc *CoderStateAlloc) *CoderState {
	var stack []frame
	if alloc != nil {
		stack = alloc.stack[:0]
		alloc.stack = nil
	}
	cs := &CoderState{root: root, stack: stack}
	cs.stack = append(cs.stack, frame{kind: frameNeed, need: root})
	cs.started = true
	return cs
}

// IsFinished reports whether the top-level value has been completely coded
// and no error has broken the state.
func (cs *CoderState) IsFinished() bool {
	return cs.broken == nil && len(cs.stack) == 0
}

// IsFinishedOrErr reports whether coding has finished or the state is
// broken — i.e. whether there is nothing further a caller should attempt.
func (cs *CoderState) IsFinishedOrErr() bool {
	return cs.broken != nil || len(cs.stack) == 0
}

// Err returns the error that broke this CoderState, or nil if it is still
// healthy.
func (cs *CoderState) Err() error {
	return cs.broken
}

// IntoAlloc consumes cs and returns its frame buffer as a CoderStateAlloc
// for reuse by a later session. cs must not be used afterward.
func (cs *CoderState) IntoAlloc() *CoderStateAlloc {
	alloc := GetAlloc()
	alloc.stack = cs.stack[:0]
	cs.stack = nil
	return alloc
}

func (cs *CoderState) fail(op string, path string, err error) error {
	se := newStateError(op, path, err)
	if cs.broken == nil {
		cs.broken = se
	}
	return se
}

// checkBroken returns the sticky error if cs is already broken.
func (cs *CoderState) checkBroken(op string) error {
	if cs.broken != nil {
		return newStateError(op, "", ErrBroken)
	}
	return nil
}

func (cs *CoderState) top() (*frame, bool) {
	if len(cs.stack) == 0 {
		return nil, false
	}
	return &cs.stack[len(cs.stack)-1], true
}

func (cs *CoderState) push(f frame) {
	cs.stack = append(cs.stack, f)
}

func (cs *CoderState) pop() frame {
	f := cs.stack[len(cs.stack)-1]
	cs.stack = cs.stack[:len(cs.stack)-1]
	return f
}

// needTop returns the Need frame's schema at the top of the stack, failing
// if the stack is empty (coding already finished) or the top isn't a Need
// frame of the expected kind.
func (cs *CoderState) needTop(op string, want schema.Kind) (*schema.Schema, error) {
	if err := cs.checkBroken(op); err != nil {
		return nil, err
	}
	f, ok := cs.top()
	if !ok {
		return nil, cs.fail(op, "", ErrAlreadyFinished)
	}
	if f.kind != frameNeed {
		return nil, cs.fail(op, "", ErrSchemaMismatch)
	}
	s := resolveRecurse(cs.stack, f.need)
	if s == nil {
		return nil, cs.fail(op, "", ErrBrokenRecurse)
	}
	if s.Kind != want {
		return nil, cs.fail(op, "", ErrSchemaMismatch)
	}
	return s, nil
}

// resolveRecurse follows a Recurse node to the ancestor it names, counting
// levels up the frame stack. needTop passes the stack with the Recurse
// node's own Need frame still on top, so level 1 means "the frame directly
// below that Need frame". Every compound frame resolves to the compound's
// own schema. Level 0, or a level past the bottom of the stack, yields nil.
func resolveRecurse(stack []frame, s *schema.Schema) *schema.Schema {
	for s.Kind == schema.KindRecurse {
		level := s.RecurseLevel
		idx := len(stack) - 1 - level
		if level < 1 || idx < 0 || idx >= len(stack) {
			return nil
		}
		anc := &stack[idx]
		switch anc.kind {
		case frameNeed:
			s = anc.need
		case frameSeq:
			s = anc.seqSchema
		case frameTuple:
			cp := schema.Schema{Kind: schema.KindTuple, Elems: anc.elems}
			s = &cp
		case frameStruct:
			cp := schema.Schema{Kind: schema.KindStruct, Fields: anc.fields}
			s = &cp
		case frameEnum:
			cp := schema.Schema{Kind: schema.KindEnum, Variants: anc.variants}
			s = &cp
		case frameAutoFinish:
			switch {
			case anc.variants != nil:
				cp := schema.Schema{Kind: schema.KindEnum, Variants: anc.variants}
				s = &cp
			case anc.optSchema != nil:
				s = anc.optSchema
			default:
				return nil
			}
		default:
			return nil
		}
	}
	return s
}

// complete is called whenever a leaf coding call (scalar, str, bytes, unit,
// option-none) finishes. It pops the satisfied Need frame and unwinds any
// immediately enclosing AutoFinish frames (option-some, enum-variant),
// whose completion is implicit. Seq/Tuple/Struct frames are never unwound
// here: the caller must close them explicitly with FinishSeq/FinishTuple/
// FinishStruct, which is what lets a premature finish be rejected as an API
// usage error rather than silently accepted.
func (cs *CoderState) complete() {
	cs.pop() // the frameNeed that just finished
	cs.unwindAutoFinish()
}

// unwindAutoFinish pops every AutoFinish frame currently on top of the
// stack. AutoFinish frames only ever stack directly on each other (nested
// Option/Enum), so a single pass suffices.
func (cs *CoderState) unwindAutoFinish() {
	for {
		f, ok := cs.top()
		if !ok || f.kind != frameAutoFinish {
			return
		}
		cs.pop()
	}
}

// CodeScalar validates and completes a scalar leaf of the given type.
func (cs *CoderState) CodeScalar(op string, t schema.ScalarType) error {
	s, err := cs.needTop(op, schema.KindScalar)
	if err != nil {
		return err
	}
	if s.Scalar != t {
		return cs.fail(op, "", ErrSchemaMismatch)
	}
	cs.complete()
	return nil
}

// CodeStr validates and completes a Str leaf.
func (cs *CoderState) CodeStr(op string) error {
	if _, err := cs.needTop(op, schema.KindStr); err != nil {
		return err
	}
	cs.complete()
	return nil
}

// CodeBytes validates and completes a Bytes leaf.
func (cs *CoderState) CodeBytes(op string) error {
	if _, err := cs.needTop(op, schema.KindBytes); err != nil {
		return err
	}
	cs.complete()
	return nil
}

// CodeUnit validates and completes a Unit leaf.
func (cs *CoderState) CodeUnit(op string) error {
	if _, err := cs.needTop(op, schema.KindUnit); err != nil {
		return err
	}
	cs.complete()
	return nil
}

// SetOptionNone validates the current position is an Option and completes
// it as the absent case.
func (cs *CoderState) SetOptionNone(op string) error {
	if _, err := cs.needTop(op, schema.KindOption); err != nil {
		return err
	}
	cs.complete()
	return nil
}

// BeginOptionSome validates the current position is an Option and opens
// its wrapped inner schema for coding. The caller must code exactly one
// value matching the inner schema next; completing it auto-finishes the
// option, with no separate finish call.
func (cs *CoderState) BeginOptionSome(op string) error {
	s, err := cs.needTop(op, schema.KindOption)
	if err != nil {
		return err
	}
	full := *s
	inner := s.Inner
	cs.pop()
	cs.push(frame{kind: frameAutoFinish, optSchema: &full})
	cs.push(frame{kind: frameNeed, need: inner})
	return nil
}

// BeginFixedLenSeq validates the current position is a fixed-length Seq of
// the given length and opens it for element coding.
func (cs *CoderState) BeginFixedLenSeq(op string, n int) error {
	s, err := cs.needTop(op, schema.KindSeq)
	if err != nil {
		return err
	}
	if s.SeqLen == nil || *s.SeqLen != n {
		return cs.fail(op, "", ErrSchemaMismatch)
	}
	elem := s.Inner
	cs.pop()
	cs.push(frame{kind: frameSeq, elem: elem, fixedLen: true, remaining: n, lenSet: true, seqSchema: s})
	return nil
}

// BeginVarLenSeq validates the current position is a variable-length Seq
// and opens it. SetVarLenSeqLen must be called next to declare how many
// elements will follow.
func (cs *CoderState) BeginVarLenSeq(op string) error {
	s, err := cs.needTop(op, schema.KindSeq)
	if err != nil {
		return err
	}
	if s.SeqLen != nil {
		return cs.fail(op, "", ErrSchemaMismatch)
	}
	elem := s.Inner
	cs.pop()
	cs.push(frame{kind: frameSeq, elem: elem, fixedLen: false, seqSchema: s})
	return nil
}

// SetVarLenSeqLen declares the element count of a variable-length Seq
// opened by BeginVarLenSeq.
func (cs *CoderState) SetVarLenSeqLen(op string, n int) error {
	if err := cs.checkBroken(op); err != nil {
		return err
	}
	f, ok := cs.top()
	if !ok || f.kind != frameSeq || f.fixedLen || f.lenSet {
		return cs.fail(op, "", ErrAPIUsage)
	}
	f.remaining = n
	f.lenSet = true
	return nil
}

// BeginSeqElem opens the next element of an in-progress Seq for coding.
func (cs *CoderState) BeginSeqElem(op string) error {
	if err := cs.checkBroken(op); err != nil {
		return err
	}
	f, ok := cs.top()
	if !ok || f.kind != frameSeq {
		return cs.fail(op, "", ErrSchemaMismatch)
	}
	if !f.lenSet || f.remaining <= 0 {
		return cs.fail(op, "", ErrAPIUsage)
	}
	f.remaining--
	cs.push(frame{kind: frameNeed, need: f.elem})
	return nil
}

// FinishSeq closes an in-progress Seq. The declared length (fixed or, for a
// variable-length Seq, the count given to SetVarLenSeqLen) must already be
// fully consumed; finishing early is an API usage error, not a schema
// mismatch, since the schema itself was satisfied at every element coded
// so far.
func (cs *CoderState) FinishSeq(op string) error {
	if err := cs.checkBroken(op); err != nil {
		return err
	}
	f, ok := cs.top()
	if !ok || f.kind != frameSeq {
		return cs.fail(op, "", ErrAPIUsage)
	}
	if !f.lenSet || f.remaining != 0 {
		return cs.fail(op, "", ErrAPIUsage)
	}
	cs.pop()
	cs.unwindAutoFinish()
	return nil
}

// BeginTuple validates the current position is a Tuple and opens it for
// element coding.
func (cs *CoderState) BeginTuple(op string) error {
	s, err := cs.needTop(op, schema.KindTuple)
	if err != nil {
		return err
	}
	elems := s.Elems
	cs.pop()
	cs.push(frame{kind: frameTuple, elems: elems})
	return nil
}

// BeginTupleElem opens the next element of an in-progress Tuple.
func (cs *CoderState) BeginTupleElem(op string) error {
	if err := cs.checkBroken(op); err != nil {
		return err
	}
	f, ok := cs.top()
	if !ok || f.kind != frameTuple {
		return cs.fail(op, "", ErrSchemaMismatch)
	}
	if f.idx >= len(f.elems) {
		return cs.fail(op, "", ErrAPIUsage)
	}
	elem := f.elems[f.idx]
	f.idx++
	cs.push(frame{kind: frameNeed, need: &elem})
	return nil
}

// FinishTuple closes an in-progress Tuple, failing with ErrAPIUsage if any
// element has not yet been coded.
func (cs *CoderState) FinishTuple(op string) error {
	if err := cs.checkBroken(op); err != nil {
		return err
	}
	f, ok := cs.top()
	if !ok || f.kind != frameTuple {
		return cs.fail(op, "", ErrAPIUsage)
	}
	if f.idx != len(f.elems) {
		return cs.fail(op, "", ErrAPIUsage)
	}
	cs.pop()
	cs.unwindAutoFinish()
	return nil
}

// BeginStruct validates the current position is a Struct and opens it for
// field coding.
func (cs *CoderState) BeginStruct(op string) error {
	s, err := cs.needTop(op, schema.KindStruct)
	if err != nil {
		return err
	}
	fields := s.Fields
	cs.pop()
	cs.push(frame{kind: frameStruct, fields: fields})
	return nil
}

// BeginStructField opens the next field of an in-progress Struct, checking
// that name matches the schema's declared field name at this position.
func (cs *CoderState) BeginStructField(op string, name string) error {
	if err := cs.checkBroken(op); err != nil {
		return err
	}
	f, ok := cs.top()
	if !ok || f.kind != frameStruct {
		return cs.fail(op, "", ErrSchemaMismatch)
	}
	if f.idx >= len(f.fields) {
		return cs.fail(op, "", ErrAPIUsage)
	}
	if f.fields[f.idx].Name != name {
		return cs.fail(op, "", ErrSchemaMismatch)
	}
	fieldSchema := f.fields[f.idx].Schema
	f.idx++
	cs.push(frame{kind: frameNeed, need: &fieldSchema})
	return nil
}

// FinishStruct closes an in-progress Struct, failing with ErrAPIUsage if
// any field has not yet been coded.
func (cs *CoderState) FinishStruct(op string) error {
	if err := cs.checkBroken(op); err != nil {
		return err
	}
	f, ok := cs.top()
	if !ok || f.kind != frameStruct {
		return cs.fail(op, "", ErrAPIUsage)
	}
	if f.idx != len(f.fields) {
		return cs.fail(op, "", ErrAPIUsage)
	}
	cs.pop()
	cs.unwindAutoFinish()
	return nil
}

// BeginEnum validates the current position is an Enum and returns its
// variant count.
func (cs *CoderState) BeginEnum(op string) (int, error) {
	s, err := cs.needTop(op, schema.KindEnum)
	if err != nil {
		return 0, err
	}
	variants := s.Variants
	cs.pop()
	cs.push(frame{kind: frameEnum, variants: variants})
	return len(variants), nil
}

// BeginEnumVariant validates ord and name against the schema before
// mutating anything: if either check fails, the frame stack is left exactly
// as it was when BeginEnum returned, but the failure breaks the CoderState
// like any other error, so every later call fails with ErrBroken.
func (cs *CoderState) BeginEnumVariant(op string, ord int, name string) error {
	if err := cs.checkBroken(op); err != nil {
		return err
	}
	f, ok := cs.top()
	if !ok || f.kind != frameEnum {
		return cs.fail(op, "", ErrSchemaMismatch)
	}
	if ord < 0 || ord >= len(f.variants) {
		return cs.fail(op, "", ErrBadOrdinal)
	}
	if f.variants[ord].Name != name {
		return cs.fail(op, "", ErrVariantNameMismatch)
	}
	variants := f.variants
	variantSchema := f.variants[ord].Schema
	cs.pop()
	cs.push(frame{kind: frameAutoFinish, variants: variants})
	cs.push(frame{kind: frameNeed, need: &variantSchema})
	return nil
}

// CancelEnum undoes the most recent successful BeginEnumVariant call,
// restoring the frameEnum exactly as the matching BeginEnum left it. It
// exists for the case where BeginEnumVariant's schema check passes but the
// caller's own write of the ordinal tag to an external sink then fails: the
// CoderState must not be left expecting the variant's value to come next,
// since no tag was actually committed.
func (cs *CoderState) CancelEnum(op string) error {
	if err := cs.checkBroken(op); err != nil {
		return err
	}
	f, ok := cs.top()
	if !ok || f.kind != frameNeed {
		return cs.fail(op, "", ErrAPIUsage)
	}
	cs.pop()
	af, ok := cs.top()
	if !ok || af.kind != frameAutoFinish || af.variants == nil {
		return cs.fail(op, "", ErrAPIUsage)
	}
	variants := af.variants
	cs.pop()
	cs.push(frame{kind: frameEnum, variants: variants})
	return nil
}

// MarkBroken poisons the CoderState following a failure that happened
// outside the schema check itself, reported by the caller after a coding
// call already validated successfully. Every further call then fails with
// ErrBroken, same as an internally detected schema violation.
func (cs *CoderState) MarkBroken(op string, cause error) error {
	return cs.fail(op, "", cause)
}
