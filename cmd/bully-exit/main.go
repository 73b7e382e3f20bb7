// Command bully-exit sends the out-of-band "exit" datagram to every peer
// port in [port, port+num_nodes), unsticking any listener still blocked
// in its receive loop. Test aid only.
package main

import (
	"flag"
	"log"
	"net"
	"os"

	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/election"
)

func main() {
	fs := flag.NewFlagSet("bully-exit", flag.ExitOnError)
	numNodes := fs.Int("n", 0, "number of peer ports to signal")
	port := fs.Int("p", 5000, "base UDP port")
	fs.Parse(os.Args[1:])

	if *numNodes <= 0 {
		log.Fatalf("bully-exit: -n is required and must be positive")
	}

	for i := 0; i < *numNodes; i++ {
		dst := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: *port + i}
		conn, err := net.DialUDP("udp", nil, dst)
		if err != nil {
			log.Printf("bully-exit: dial %d: %v", dst.Port, err)
			continue
		}
		if _, err := conn.Write(election.Encode(election.KindExit, 0)); err != nil {
			log.Printf("bully-exit: send to %d: %v", dst.Port, err)
		}
		conn.Close()
	}
}
