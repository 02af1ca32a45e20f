package version

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const banner = `
                 _       _   _
 _ __ ___   __ _(_)_ __ | |_| | ____   __
| '_ ' _ \ / _' | | '_ \| __| |/ /\ \ / /
| | | | | | (_| | | | | | |_|   <  \ V /
|_| |_| |_|\__,_|_|_| |_|\__|_|\_\  \_/
`

// ANSI 颜色码
const (
	colorReset  = "\033[0m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// PrintBanner 打印启动 Banner 和版本信息到 stderr
func PrintBanner() {
	// 检测是否为终端，非终端不输出颜色
	writeBanner(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
}

func writeBanner(w io.Writer, color bool) {
	if color {
		fmt.Fprintf(w, "%s%s%s", colorCyan, banner, colorReset)
		fmt.Fprintf(w, "  %sMaintenance Settings Store%s\n\n", colorYellow, colorReset)
		fmt.Fprintf(w, "%-14s %s%s%s\n", "Version:", colorGreen, Version, colorReset)
		fmt.Fprintf(w, "%-14s %s%s%s\n", "Commit:", colorGreen, Commit, colorReset)
		fmt.Fprintf(w, "%-14s %s%s%s\n\n", "Build Time:", colorGreen, BuildTime, colorReset)
		return
	}
	fmt.Fprint(w, banner)
	fmt.Fprintf(w, "  Maintenance Settings Store\n\n")
	fmt.Fprintf(w, "%-14s %s\n", "Version:", Version)
	fmt.Fprintf(w, "%-14s %s\n", "Commit:", Commit)
	fmt.Fprintf(w, "%-14s %s\n\n", "Build Time:", BuildTime)
}
