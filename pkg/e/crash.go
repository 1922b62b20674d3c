/*
 * Copyright 2024 caiflower Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package e

import (
	"runtime/debug"

	"github.com/caiflower/tiny-httpd/pkg/logger"
)

// OnError must be deferred directly, recover only works from the deferred call itself.
func OnError(txt string) {
	if r := recover(); r != nil {
		logger.Error("Got a runtime error %s. %v\n%s", txt, r, string(debug.Stack()))
	}
}

// OnErrorFunc behaves like OnError and then runs fn with the recovered value.
func OnErrorFunc(txt string, fn func(r interface{})) {
	if r := recover(); r != nil {
		logger.Error("Got a runtime error %s. %v\n%s", txt, r, string(debug.Stack()))
		if fn != nil {
			fn(r)
		}
	}
}
