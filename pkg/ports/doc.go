/*
Package ports defines the driven ports (interfaces) of AgriMind.

These interfaces decouple the invoker and the surfaces from external
implementations, so generators, stores and gateways can be swapped freely.

# Key Interfaces

  - Generator: the external generative-AI service (Gemini, OpenAI, Anthropic, Fake).
  - ConversationStore: persists chat history for the conversation service.
  - DistributedLocker: distributed locking for concurrent access to one conversation.
  - Geocoder and SMSGateway: the remaining external collaborators.
  - PromptSource: optional template overrides.
  - ActionRunner: what adapters call to execute an action.
*/
package ports
