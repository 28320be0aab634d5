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

package platform

import (
	"slices"
	"strings"

	"github.com/EngFlow/ccexpand/internal/collections"
	"github.com/EngFlow/ccexpand/language/internal/cc/diagnostic"
	"github.com/EngFlow/ccexpand/language/internal/cc/macro"
	"github.com/EngFlow/ccexpand/language/internal/cc/parser"
)

// Names of well known predefined macros per platform, built in init from
// predefinitions. A platform with an empty OS or Arch holds the macros
// defined for that OS (or Arch) whatever the other field is.
var knownMacros = map[Platform]collections.Set[string]{}

// MacroNames lists the macros predefined (to 1) for p, sorted.
func MacroNames(p Platform) []string {
	macros, exists := knownMacros[p]
	if !exists {
		return nil
	}
	return macros.SortedValues(strings.Compare)
}

// Predefined returns the definitions of the macros predefined for p, ready to
// be installed in a macro table.
func Predefined(p Platform) []*macro.Definition {
	definitions, err := parser.ParseMacros(MacroNames(p))
	if err != nil {
		// every known name is a valid identifier
		panic(err)
	}
	return definitions
}

// Install defines the macros predefined for p in table. Conflicts with
// existing definitions are reported to sink.
func Install(p Platform, table *macro.MacroTable, sink diagnostic.Sink) {
	for _, def := range Predefined(p) {
		table.Define(def, sink)
	}
}

type predefinition struct {
	names     []string
	platforms []Platform
}

func names(list ...string) []string { return list }

var (
	windowsArchs = []Arch{i386, x86_32, x86_64, aarch32, aarch64}
	androidArchs = []Arch{aarch32, aarch64, x86_32, x86_64, riscv64}
	chromeArchs  = []Arch{x86_64, aarch64, riscv64}
	wasmArchs    = []Arch{wasm32, wasm64}
	bsdArchs     = []Arch{i386, x86_64, aarch64, riscv64, ppc64le}
	embedArchs   = []Arch{aarch32, aarch64, ppc32, ppc64le, x86_32, x86_64}
	uefiArchs    = []Arch{aarch32, aarch64, x86_32, x86_64, riscv64}

	// Modern Apple targets only: no 32-bit x86 or armv6.
	macArchs    = []Arch{x86_64, aarch64, arm64e}
	iosArchs    = []Arch{aarch64, arm64e}
	watchArchs  = []Arch{armv7k, arm64_32}
	tvArchs     = []Arch{aarch64}
	visionArchs = []Arch{aarch64}

	wasmOS = []OS{emscripten, wasi}
	// Apple systems do not define unix.
	unixOS    = []OS{linux, android, chromiumos, nixos, freebsd, netbsd, openbsd, haiku, qnx}
	powerPCOS = []OS{linux, freebsd, netbsd, openbsd, qnx, vxworks}
	mipsOS    = []OS{linux, netbsd, openbsd, qnx, vxworks}
	riscvOS   = []OS{linux, freebsd, netbsd, openbsd, qnx, vxworks, android, chromiumos, fuchsia, nixos}
)

func applePlatforms() []Platform {
	return slices.Concat(
		onOS(osx, macArchs...),
		onOS(ios, iosArchs...),
		onOS(tvos, tvArchs...),
		onOS(watchos, watchArchs...),
		onOS(visionos, visionArchs...),
	)
}

func unixPlatforms() []Platform {
	var platforms []Platform
	for _, os := range unixOS {
		platforms = append(platforms, onOS(os, allKnownArch...)...)
	}
	return platforms
}

var predefinitions = []predefinition{
	// Windows
	{names("_WIN32"), onOS(windows, windowsArchs...)},
	{names("_WIN64"), onOS(windows, x86_64, aarch64)},
	{names("__MINGW32__", "_M_IX86"), exactly(windows, i386)},
	{names("__MINGW64__", "_M_X64"), exactly(windows, x86_64)},
	{names("_M_ARM"), exactly(windows, aarch32)},
	{names("_M_ARM64"), exactly(windows, aarch64)},

	// Linux and its relatives
	{names("linux", "__linux__", "__linux", "__gnu_linux__"), onOS(linux, allKnownArch...)},
	{names("__NIX__", "__NIXOS__"), onOS(nixos, allKnownArch...)},
	{names("__ANDROID__"), onOS(android, androidArchs...)},
	{names("__CHROMEOS__"), onOS(chromiumos, chromeArchs...)},
	{names("unix", "__unix", "__unix__"), unixPlatforms()},

	// WebAssembly
	{names("__EMSCRIPTEN__"), matrix([]OS{emscripten}, wasmArchs)},
	{names("__wasi__"), matrix([]OS{wasi}, wasmArchs)},
	{names("__wasm__"), matrix(wasmOS, wasmArchs)},
	{names("__wasm32__"), matrix(wasmOS, []Arch{wasm32})},
	{names("__wasm64__"), matrix(wasmOS, []Arch{wasm64})},

	// BSD
	{names("__FreeBSD__"), onOS(freebsd, bsdArchs...)},
	{names("__NetBSD__"), onOS(netbsd, bsdArchs...)},
	{names("__OpenBSD__"), onOS(openbsd, bsdArchs...)},

	// Other systems
	{names("__QNX__", "__QNXNTO__"), onOS(qnx, embedArchs...)},
	{names("__HAIKU__"), onOS(haiku, x86_32, x86_64)},
	{names("__FUCHSIA__", "__Fuchsia__"), onOS(fuchsia, aarch64, x86_64)},
	{names("__VXWORKS__", "__vxworks"), onOS(vxworks, embedArchs...)},
	{names("__UEFI__", "__EFI__"), onOS(uefi, uefiArchs...)},

	// Apple
	{names("__APPLE__", "__MACH__"), applePlatforms()},
	{names("TARGET_OS_OSX", "TARGET_OS_MAC"), onOS(osx, macArchs...)},
	{names("TARGET_OS_IPHONE", "TARGET_OS_IOS"), onOS(ios, iosArchs...)},
	{names("TARGET_OS_TV"), onOS(tvos, tvArchs...)},
	{names("TARGET_OS_WATCH"), onOS(watchos, watchArchs...)},
	{names("TARGET_OS_VISION"), onOS(visionos, visionArchs...)},

	// CPU families, whatever the system
	{names("__x86_64__", "__x86_64", "__amd64", "__amd64__"), onArch(x86_64, allKnownOs...)},
	{names("__i386__", "__i386"), onArch(i386, allKnownOs...)},
	{names("__arm__", "__arm", "__thumb__", "__thumb"), onArch(aarch32, allKnownOs...)},
	{names("__aarch64__", "__arm64", "__arm64__"), onArch(aarch64, allKnownOs...)},
	{names("__ARM64_32__", "__ARM64_32"), exactly(watchos, arm64_32)},
	{names("__arm64e__", "__arm64e"), onArch(arm64e, osx, ios)},
	{names("__powerpc__", "__PPC__"), onArch(ppc32, powerPCOS...)},
	{names("__powerpc64__", "__ppc64__"), onArch(ppc64le, powerPCOS...)},
	{names("__mips64"), onArch(mips64, mipsOS...)},
	{names("__s390x__", "__s390__"), exactly(linux, s390x)},
	{names("__riscv"), onArch(riscv64, riscvOS...)},

	// Bare-metal Arm profiles
	{names("__ARM_ARCH_6M__"), exactly(none, armv6m)},
	{names("__ARM_ARCH_7__", "__ARM_ARCH_7A__"), exactly(none, armv7)},
	{names("__ARM_ARCH_7M__"), exactly(none, armv7m)},
	{names("__ARM_ARCH_7EM__"), exactly(none, armv7em)},
	{names("__ARM_ARCH_8M_BASE__", "__ARM_ARCH_8M_MAIN__"), exactly(none, armv8m)},
}

func init() {
	for _, def := range predefinitions {
		for _, platform := range def.platforms {
			macros, exists := knownMacros[platform]
			if !exists {
				macros = make(collections.Set[string], 8)
				knownMacros[platform] = macros
			}
			macros.AddSlice(def.names)
		}
	}
}

func exactly(os OS, arch Arch) []Platform {
	return []Platform{{os, arch}}
}

// onOS returns os combined with each of archs, plus the OS-only platform.
func onOS(os OS, archs ...Arch) []Platform {
	return append(matrix([]OS{os}, archs), Platform{OS: os})
}

// onArch returns arch combined with each of oses, plus the Arch-only platform.
func onArch(arch Arch, oses ...OS) []Platform {
	return append(matrix(oses, []Arch{arch}), Platform{Arch: arch})
}

func matrix(oses []OS, archs []Arch) []Platform {
	result := make([]Platform, 0, len(oses)*len(archs))
	for _, os := range oses {
		for _, arch := range archs {
			result = append(result, Platform{OS: os, Arch: arch})
		}
	}
	return result
}
