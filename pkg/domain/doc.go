/*
Package domain contains the core models of AgriMind.

It defines what an action is and what invoking one produces. This package is
kept free of I/O and persistence, following Hexagonal Architecture principles.

# Key Entities

  - ActionSpec: one AI-backed action (input and output schemas, instruction template).
  - ActionResult: the success-or-failure union returned by an invocation.
  - ActionError: the error form of a failure, matched with errors.Is against ErrValidation and friends.
  - Conversation: optional server-side chat history, owned by callers and never read by the invoker.
*/
package domain
