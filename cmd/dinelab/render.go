// Copyright 2025 The Cockroach Authors
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
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/dinelab/dine"
	"github.com/cockroachdb/dinelab/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	phaseStyles = map[table.Phase]lipgloss.Style{
		table.Thinking:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		table.Requesting: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		table.Eating:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		table.Releasing:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}

	grantStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	timeoutStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func renderHeader(strategy string) string {
	return headerStyle.Render(fmt.Sprintf("=== %s strategy ===", strings.ToUpper(strategy)))
}

func renderEntry(e dine.Entry) string {
	switch e.Kind {
	case dine.PhaseEntry:
		if style, ok := phaseStyles[e.Phase]; ok {
			return style.Render(e.String())
		}
	case dine.GrantEntry, dine.ReturnEntry:
		return grantStyle.Render(e.String())
	case dine.TimeoutEntry:
		return timeoutStyle.Render(e.String())
	}
	return e.String()
}
