// Package pkg provides the core libraries for the dentflow admin console.
//
// # Overview
//
// Dentflow manages dental intake questionnaires: branching question
// flows that patients walk through before an appointment. The pkg
// directory is organized into five main areas:
//
//  1. [question] - The questionnaire domain model (typed questions, raw records)
//  2. [flow] - Graph construction, layout, routing, scene assembly, editing
//  3. [store] - MongoDB persistence for questions, users, and appointments
//  4. [session] / [notify] - Login sessions and the realtime refresh channel
//  5. [config] / [errors] / [buildinfo] - Ambient concerns
//
// # Architecture
//
// The typical data flow through the console:
//
//	MongoDB question records
//	         ↓
//	    [question] package (decode into typed questions)
//	         ↓
//	    [flow] package (reachable graph + layered layout)
//	         ↓
//	    [flow/route] package (collision-aware orthogonal routing)
//	         ↓
//	    [flow/canvas] package (selection tiers + scene view model)
//	         ↓
//	    [flow/render] package (SVG / DOT output)
//
// Mutations run the other way: [flow/editor] validates a draft and hands
// it to the store, which splices new questions into existing routes; the
// server then announces the change on the [notify] channel so open
// consoles refetch.
package pkg
