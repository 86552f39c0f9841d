// Copyright 2021 EMQ Technologies Co., Ltd.
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

package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Functions []FunctionSpec `yaml:"functions"`
}

// LoadFile reads a function catalog from a YAML document of the form:
//
//	functions:
//	  - name: my_func
//	    deterministic: true
//	    template: "arg0 + arg1"
//	    returnType: bigint
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", path, err)
	}
	c := New()
	for _, spec := range doc.Functions {
		if err := c.Register(spec); err != nil {
			return nil, err
		}
	}
	return c, nil
}
