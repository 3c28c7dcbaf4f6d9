// Copyright 2025 Lucentia Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package core defines the domain model shared across Studyforge: the fixed
// pipeline stage enumeration, job and stage status tracking, chunks and
// their generated notes, and the export metadata contract.
//
// The package has no dependencies on other Studyforge packages. Types here
// carry the JSON field names that form the on-disk artifact contract
// (chunks.json, chunk_summaries.json, overview.json, metadata.json) and the
// job query surface.
package core
