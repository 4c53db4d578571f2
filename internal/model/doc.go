// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the tutor client.
//
// # Messages
//
// A Message is one turn of a tutoring conversation. Its Content is usually a
// string but the backend may store structured values; those are kept as raw
// JSON and shown without segmentation.
//
// # Preferences
//
// A LearningPreference is the record created by the preference wizard. It
// selects the learning mode, topic, sub topic and level used for every
// advance call, and its identifier is the route-scoped chat identifier.
//
// # Images
//
// TopicImage is the backend's image record for a topic. ImageDescriptor is
// the projection sent with every advance call, ordered by image number.
package model
