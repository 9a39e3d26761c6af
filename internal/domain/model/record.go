// Package model contains the peer-evaluation hierarchy shared by the builder,
// the score engine and the renderers.
//
// A Cohort owns Teams, a Team owns Evaluated students and an Evaluated student
// owns the Evaluators who rated them. Children are attached through typed Add
// methods and are never reparented.
package model

// Record is one flat row of a peer-evaluation export: one aspect rating given
// by one evaluator to one evaluated student.
//
// Rating and Override keep the source text. The hierarchy builder parses them
// and reports failures against Line.
type Record struct {
	Line int // 1-based source line, 0 when unknown

	Team string

	EvaluatedLastName string
	EvaluatedSurname  string
	EvaluatedEmail    string

	EvaluatorLastName string
	EvaluatorSurname  string

	Rating   string // integer aspect rating
	Override string // manually entered note; empty or 0 means none
}
