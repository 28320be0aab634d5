// Copyright 2026 EngFlow Inc. All rights reserved.
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

// Package platform describes target operating system and architecture pairs
// and the macros a compiler predefines for them, e.g. _WIN32 or __linux__.
package platform

import (
	"cmp"
	"fmt"
	"runtime"
	"slices"
	"strings"
)

// Platform is an OS/Arch pair. An empty field matches any value, so
// Platform{OS: "linux"} stands for Linux on every architecture.
type Platform struct {
	OS   OS
	Arch Arch
}

func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// Compare orders first by OS, then by Arch.
func Compare(a, b Platform) int {
	if d := cmp.Compare(a.OS, b.OS); d != 0 {
		return d
	}
	return cmp.Compare(a.Arch, b.Arch)
}

// Create validates os and arch after resolving aliases such as "macos" or
// "amd64". An empty arch is accepted and matches any architecture.
func Create(os OS, arch Arch) (Platform, error) {
	platform := Platform{
		OS:   dealias(os, osAlias),
		Arch: dealias(arch, archAlias),
	}
	if !slices.Contains(allKnownOs, platform.OS) {
		return platform, fmt.Errorf("unknown OS %q, expected one of %v or an alias %v", platform.OS, allKnownOs, osAlias)
	}
	if platform.Arch != "" && !slices.Contains(allKnownArch, platform.Arch) {
		return platform, fmt.Errorf("unknown architecture %q, expected one of %v or an alias %v", platform.Arch, allKnownArch, archAlias)
	}
	return platform, nil
}

// Parse reads a platform written as "os/arch" or just "os", e.g.
// "linux/x86_64" or "macos".
func Parse(s string) (Platform, error) {
	os, arch, _ := strings.Cut(strings.TrimSpace(s), "/")
	if os == "" {
		return Platform{}, fmt.Errorf("invalid platform %q, expected os/arch", s)
	}
	return Create(OS(strings.ToLower(os)), Arch(strings.ToLower(arch)))
}

// Host returns the platform this program runs on. Go names not known as a
// platform are kept as they are.
func Host() Platform {
	return Platform{
		OS:   dealias(OS(runtime.GOOS), goosAlias),
		Arch: dealias(Arch(runtime.GOARCH), goarchAlias),
	}
}

// Operating system identifier matching constraint value names defined in '@platforms//os'.
// Should match one the values defined in https://github.com/bazelbuild/platforms/blob/1.0.0/os/BUILD
type OS string

const (
	android    OS = "android"
	chromiumos OS = "chromiumos"
	emscripten OS = "emscripten"
	freebsd    OS = "freebsd"
	fuchsia    OS = "fuchsia"
	haiku      OS = "haiku"
	ios        OS = "ios"
	linux      OS = "linux"
	netbsd     OS = "netbsd"
	nixos      OS = "nixos"
	none       OS = "none" // bare-metal
	openbsd    OS = "openbsd"
	osx        OS = "osx"
	qnx        OS = "qnx"
	tvos       OS = "tvos"
	uefi       OS = "uefi"
	visionos   OS = "visionos"
	vxworks    OS = "vxworks"
	wasi       OS = "wasi"
	watchos    OS = "watchos"
	windows    OS = "windows"
)

var osAlias = map[string]OS{
	"macos":  osx,
	"darwin": osx,
	"win32":  windows,
}

var goosAlias = map[string]OS{
	"darwin": osx,
	"wasip1": wasi,
	"js":     emscripten,
}

var allKnownOs = []OS{
	android, chromiumos, emscripten, freebsd, fuchsia, haiku, ios,
	linux, netbsd, nixos, none, openbsd, osx, qnx, tvos,
	uefi, visionos, vxworks, wasi, watchos, windows,
}

// Architecture identifier matching constraint value names defined in '@platforms//cpu'.
// Should match one the values defined in https://github.com/bazelbuild/platforms/blob/1.0.0/cpu/BUILD
type Arch string

const (
	all       Arch = "all" // architecture-independent
	aarch32   Arch = "aarch32"
	aarch64   Arch = "aarch64"
	arm64_32  Arch = "arm64_32"
	arm64e    Arch = "arm64e"
	armv6m    Arch = "armv6-m"
	armv7     Arch = "armv7"
	armv7em   Arch = "armv7e-m"
	armv7emf  Arch = "armv7e-mf"
	armv7k    Arch = "armv7k"
	armv7m    Arch = "armv7-m"
	armv8m    Arch = "armv8-m"
	cortexr52 Arch = "cortex-r52"
	cortexr82 Arch = "cortex-r82"
	i386      Arch = "i386"
	mips64    Arch = "mips64"
	ppc       Arch = "ppc"
	ppc32     Arch = "ppc32"
	ppc64le   Arch = "ppc64le"
	riscv32   Arch = "riscv32"
	riscv64   Arch = "riscv64"
	s390x     Arch = "s390x"
	wasm32    Arch = "wasm32"
	wasm64    Arch = "wasm64"
	x86_32    Arch = "x86_32"
	x86_64    Arch = "x86_64"
)

var archAlias = map[string]Arch{
	"arm":   aarch32,
	"arm64": aarch64,
	"amd64": x86_64,
	"x64":   x86_64,
	"386":   i386,
	"x86":   i386,
}

var goarchAlias = map[string]Arch{
	"386":   i386,
	"amd64": x86_64,
	"arm":   aarch32,
	"arm64": aarch64,
	"wasm":  wasm32,
}

var allKnownArch = []Arch{
	all, aarch32, aarch64, arm64_32, arm64e, armv6m, armv7, armv7em, armv7emf,
	armv7k, armv7m, armv8m, cortexr52, cortexr82, i386, mips64, ppc,
	ppc32, ppc64le, riscv32, riscv64, s390x, wasm32, wasm64, x86_32, x86_64,
}

func dealias[T ~string](value T, aliases map[string]T) T {
	if dealiased, exists := aliases[string(value)]; exists {
		return dealiased
	}
	return value
}
