// Copyright 2025 the original author or authors.
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

package cli

import (
	"github.com/spf13/pflag"

	"m4o.io/osmdoc"
)

// -- *osmdoc.Output Value
type outputValue struct {
	value **osmdoc.Output
	path  string
}

// NewOutputValue creates a cobra Value that creates the named file, or uses
// standard output for "-", compressing by the file's suffix.
func NewOutputValue(p **osmdoc.Output) pflag.Value {
	return &outputValue{value: p}
}

func (o *outputValue) Set(val string) error {
	out, err := osmdoc.CreateOutput(val)
	if err != nil {
		return err
	}

	*o.value = out
	o.path = val

	return nil
}

func (o *outputValue) Type() string {
	return "file"
}

func (o *outputValue) String() string {
	return o.path
}
