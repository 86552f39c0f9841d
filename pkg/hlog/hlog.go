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

// Package hlog holds the pass-wide logger used by package pushdown and
// cmd/hetuctl. Package pushdown logs at debug level when a traversal
// starts and completes; individual rules do not log.
package hlog

import (
	filename "github.com/keepeye/logrus-filename"
	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func init() {
	Log = logrus.New()
	hook := filename.NewHook()
	hook.Field = "file"
	Log.AddHook(hook)
	Log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
		FullTimestamp:   true,
	})
	Log.SetLevel(logrus.InfoLevel)
}

// SetLevel lets cmd/hetuctl wire a --verbose flag to debug-level
// logging.
func SetLevel(level logrus.Level) {
	Log.SetLevel(level)
}
