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


// Package notes implements the summarisation gateway and its deterministic
// fallbacks.
//
// The Gateway submits role-specific prompts to an Ollama-compatible
// generation endpoint and parses the structured JSON it returns. Every
// failure mode of that exchange — transport error, timeout, empty response,
// unparsable JSON — surfaces as a *GenerationError value the caller
// inspects to substitute FallbackNote/FallbackOverview content; generation
// problems never fail a pipeline stage.
//
// The package also renders the two consumer-facing markdown documents
// (study summary and quotes) whose front-matter and headings form a
// compatibility contract with downstream static-site tooling.
package notes
