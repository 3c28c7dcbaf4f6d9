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


package core

import "errors"

// Domain errors
var (
	// ErrJobNotFound indicates an operation referenced an unregistered job.
	ErrJobNotFound = errors.New("job not found")

	// ErrDuplicateJob indicates a job id was registered twice.
	ErrDuplicateJob = errors.New("job already registered")

	// ErrUnknownStage indicates a stage was not registered for the job.
	ErrUnknownStage = errors.New("stage not registered for job")

	// ErrJobTerminal indicates a transition was attempted on a completed or
	// failed job.
	ErrJobTerminal = errors.New("job is in a terminal state")

	// ErrNoDocuments indicates ingestion yielded no usable text.
	ErrNoDocuments = errors.New("no textual documents available after ingest")
)
