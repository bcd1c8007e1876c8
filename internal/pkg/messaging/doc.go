// Package messaging publishes and consumes events over core NATS.
//
// Delivery is at-most-once: a message whose handler fails is logged and
// dropped, so handlers own their retries.
package messaging
