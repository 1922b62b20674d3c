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
package router

import "strings"

type Route int

const (
	RouteRoot Route = iota
	RouteEcho
	RouteUserAgent
	RouteFileGet
	RouteFilePost
	RouteMethodNotAllowed
	RouteNotFound
)

const (
	MethodGet  = "GET"
	MethodPost = "POST"

	echoPrefix  = "/echo/"
	filesRoute  = "/files"
	filesPrefix = "/files/"
)

var routeNames = map[Route]string{
	RouteRoot:             "root",
	RouteEcho:             "echo",
	RouteUserAgent:        "user-agent",
	RouteFileGet:          "file-get",
	RouteFilePost:         "file-post",
	RouteMethodNotAllowed: "method-not-allowed",
	RouteNotFound:         "not-found",
}

func (r Route) String() string {
	if name, ok := routeNames[r]; ok {
		return name
	}
	return "unknown"
}

// Dispatch maps a method and path to a route. The first matching rule wins.
func Dispatch(method, path string) Route {
	switch {
	case path == "/":
		return RouteRoot
	case strings.HasPrefix(path, echoPrefix):
		return RouteEcho
	case path == "/user-agent":
		return RouteUserAgent
	case strings.HasPrefix(path, filesRoute):
		switch method {
		case MethodGet:
			return RouteFileGet
		case MethodPost:
			return RouteFilePost
		default:
			return RouteMethodNotAllowed
		}
	default:
		return RouteNotFound
	}
}
