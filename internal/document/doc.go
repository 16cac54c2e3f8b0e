// Package document resolves a focused editor into a Document and keeps that
// document's encoding facts current.
//
// A Resolver inspects the editor's input once and picks one of the Kind
// variants. The resulting Document computes a State snapshot from the raw
// content (byte-order mark, declared charset, detected charset, line
// separator) and from the host's settings (explicit and inherited
// encodings). Mutations are gated by Capabilities; calling one a document
// does not support does nothing.
//
// The host supplies the Editor, Input and Workspace implementations. Every
// call must come from the host's UI goroutine.
package document
